package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

const sampleDocument = `{
  "proyectos": [
    ["A", {"tipo": "simple", "imgCount": 2, "textosES": ["hola"], "textosEN": ["hi"]}],
    ["B", {
      "tipo": "complejo",
      "titulo": "Proyecto B",
      "color": "#eee",
      "imgCount": {"X": 3, "Y": 1},
      "textosES": ["general"],
      "subproyectos": [
        ["X", {"textosES": ["equis"]}],
        ["Y", {}]
      ]
    }]
  ],
  "about": {"titulo": "mokakopa", "subtitulo": "estudio", "textosES": ["sobre"], "textosFR": ["à propos"]}
}`

func decodeSample(t *testing.T) *Document {
	t.Helper()
	var doc Document
	if err := json.Unmarshal([]byte(sampleDocument), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return &doc
}

func TestDecodeDocument(t *testing.T) {
	doc := decodeSample(t)

	if len(doc.Projects) != 2 {
		t.Fatalf("projects = %d, want 2", len(doc.Projects))
	}
	a := doc.Projects[0]
	if a.Name != "A" || a.Project.Kind != KindSimple || a.Project.ImageCount.Total != 2 {
		t.Errorf("project A decoded as %+v", a.Project)
	}
	if a.Project.ImageCount.Nested() {
		t.Error("simple project count should not be nested")
	}

	b := doc.Projects[1]
	if b.Project.Kind != KindComplex {
		t.Errorf("kind = %q, want %q", b.Project.Kind, KindComplex)
	}
	if b.Label() != "Proyecto B" {
		t.Errorf("label = %q, want %q", b.Label(), "Proyecto B")
	}
	if got := b.Project.ImageCount.Sub("X"); got != 3 {
		t.Errorf("Sub(X) = %d, want 3", got)
	}
	if got := b.Project.ImageCount.Sub("missing"); got != 0 {
		t.Errorf("Sub(missing) = %d, want 0", got)
	}
	if len(b.Project.Subprojects) != 2 || b.Project.Subprojects[1].Name != "Y" {
		t.Errorf("subprojects decoded as %+v", b.Project.Subprojects)
	}
	if doc.About == nil || doc.About.Subtitle != "estudio" {
		t.Errorf("about decoded as %+v", doc.About)
	}
}

func TestDecodeRejectsMalformedPair(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"proyectos": [["only-name"]]}`), &doc)
	if err == nil {
		t.Fatal("expected error for single element pair")
	}
}

func TestTextsForFallback(t *testing.T) {
	tests := []struct {
		name  string
		texts Texts
		lang  string
		want  []string
	}{
		{"requested present", Texts{"ES": {"hola"}, "EN": {"hi"}}, "EN", []string{"hi"}},
		{"lower case code", Texts{"ES": {"hola"}, "EN": {"hi"}}, "en", []string{"hi"}},
		{"requested empty", Texts{"ES": {"hola"}, "EN": {}}, "EN", []string{"hola"}},
		{"requested absent", Texts{"ES": {"hola"}}, "FR", []string{"hola"}},
		{"nothing at all", nil, "EN", []string{}},
		{"only other language", Texts{"EN": {"hi"}}, "FR", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Project{Texts: tt.texts}
			got := p.TextsFor(tt.lang)
			if got == nil {
				t.Fatal("TextsFor returned nil")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TextsFor(%q) = %v, want %v", tt.lang, got, tt.want)
			}
		})
	}

	var nilProject *Project
	if got := nilProject.TextsFor("EN"); len(got) != 0 {
		t.Errorf("nil project TextsFor = %v", got)
	}
	var nilAbout *About
	if got := nilAbout.TextsFor("EN"); len(got) != 0 {
		t.Errorf("nil about TextsFor = %v", got)
	}
}

func TestFindTextRecord(t *testing.T) {
	doc := decodeSample(t)

	rec, ok := doc.FindTextRecord("X")
	if !ok {
		t.Fatal("expected subproject X to be found")
	}
	if got := rec.TextsFor("ES"); !reflect.DeepEqual(got, []string{"equis"}) {
		t.Errorf("X texts = %v", got)
	}
	if _, ok := doc.FindTextRecord("B"); !ok {
		t.Error("expected top-level project B to be found")
	}
	if _, ok := doc.FindTextRecord("gone"); ok {
		t.Error("expected miss for unknown name")
	}
}

func TestFindTextRecordPrecedence(t *testing.T) {
	const data = `{"proyectos": [
		["A", {"tipo": "complejo", "subproyectos": [["X", {"textosES": ["first"]}]]}],
		["B", {"tipo": "complejo", "subproyectos": [["X", {"textosES": ["second"]}], ["Y", {"textosES": ["sub"]}]]}],
		["Y", {"textosES": ["top"]}]
	]}`
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		want string
	}{
		{"X", "second"},
		{"Y", "top"},
	}
	for _, tt := range tests {
		rec, ok := doc.FindTextRecord(tt.name)
		if !ok {
			t.Fatalf("%s not found", tt.name)
		}
		if got := rec.TextsFor("ES")[0]; got != tt.want {
			t.Errorf("FindTextRecord(%q) texts = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDocumentLanguages(t *testing.T) {
	doc := decodeSample(t)
	want := []string{"EN", "ES", "FR"}
	if got := doc.Languages(); !reflect.DeepEqual(got, want) {
		t.Errorf("Languages() = %v, want %v", got, want)
	}
}

func TestImageCountKeepsShape(t *testing.T) {
	doc := decodeSample(t)
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var again Document
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if again.Projects[0].Project.ImageCount.Nested() {
		t.Error("flat count re-encoded as mapping")
	}
	if !again.Projects[1].Project.ImageCount.Nested() {
		t.Error("mapping count re-encoded as integer")
	}
	if again.About.Texts["FR"][0] != "à propos" {
		t.Errorf("about FR text lost: %v", again.About.Texts)
	}
}

func TestMarshalKeepsUnknownKeys(t *testing.T) {
	const data = `{
  "version": 2,
  "proyectos": [
    ["A", {"id": 7, "extra": {"k": "v"}, "title": "Alpha", "background": "#000", "imgCount": 0, "textosES": ["hola"]}],
    ["B", {"tipo": "complejo", "imgCount": {"X": 1}, "subproyectos": [["X", {"nota": "n", "textosEN": ["ex"]}]]}]
  ],
  "about": {"title": "mokakopa", "email": "hi@example.com", "link": "https://example.com"}
}`
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	doc.Projects[0].Project.Texts["EN"] = []string{"hi"}
	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got struct {
		Version   int                 `json:"version"`
		Proyectos [][]json.RawMessage `json:"proyectos"`
		About     map[string]any      `json:"about"`
	}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("re-decoding %s: %v", out, err)
	}
	if got.Version != 2 {
		t.Errorf("top-level version lost: %s", out)
	}

	var a map[string]any
	if err := json.Unmarshal(got.Proyectos[0][1], &a); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"id":         float64(7),
		"extra":      map[string]any{"k": "v"},
		"title":      "Alpha",
		"background": "#000",
		"imgCount":   float64(0),
		"textosES":   []any{"hola"},
		"textosEN":   []any{"hi"},
	}
	if !reflect.DeepEqual(a, want) {
		t.Errorf("project A = %v, want %v", a, want)
	}

	var b map[string]json.RawMessage
	if err := json.Unmarshal(got.Proyectos[1][1], &b); err != nil {
		t.Fatal(err)
	}
	var subs [][]json.RawMessage
	if err := json.Unmarshal(b["subproyectos"], &subs); err != nil {
		t.Fatal(err)
	}
	var x map[string]any
	if err := json.Unmarshal(subs[0][1], &x); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(x, map[string]any{"nota": "n", "textosEN": []any{"ex"}}) {
		t.Errorf("subproject X gained or lost keys: %v", x)
	}

	wantAbout := map[string]any{"title": "mokakopa", "email": "hi@example.com", "link": "https://example.com"}
	if !reflect.DeepEqual(got.About, wantAbout) {
		t.Errorf("about = %v, want %v", got.About, wantAbout)
	}
}

func TestSetImageCountIsWritten(t *testing.T) {
	var p Project
	if err := json.Unmarshal([]byte(`{"textosES": ["hola"]}`), &p); err != nil {
		t.Fatal(err)
	}
	before, _ := json.Marshal(p)
	if strings.Contains(string(before), "imgCount") || strings.Contains(string(before), "tipo") {
		t.Errorf("defaults added to %s", before)
	}

	p.SetImageCount(ImageCount{})
	after, _ := json.Marshal(p)
	if !strings.Contains(string(after), `"imgCount":0`) {
		t.Errorf("counted zero not written: %s", after)
	}
}
