package bibtex

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestBuildEntry(t *testing.T) {
	e := mustParseOne(t, `@article{doe2020, author = "Doe, Jane", title = {A Study}, year = 2020}`)

	want := "@article{doe2020,\n\tauthor = {Doe, Jane},\n\ttitle = {A Study},\n\tyear = {2020}\n}"
	if got := BuildEntry(e); got != want {
		t.Errorf("BuildEntry() =\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildEntry_NoFields(t *testing.T) {
	e := &Entry{Type: "misc", Key: "empty"}
	if got := BuildEntry(e); got != "@misc{empty\n}" {
		t.Errorf("BuildEntry() = %q", got)
	}
}

func TestBuildEntry_UsesRawValue(t *testing.T) {
	e := &Entry{Type: "misc", Key: "k"}
	e.Set(Field{RawName: "Title", RawValue: `Caf{\'e}`, Value: "Café"})

	got := BuildEntry(e)
	if !strings.Contains(got, "\ttitle = {Caf{\\'e}}") {
		t.Errorf("BuildEntry() = %q, want raw LaTeX value under lowercased name", got)
	}
}

func TestBuildEntries(t *testing.T) {
	entries := mustParse(t, `@misc{b, title = {B}} @misc{a, title = {A}}`)
	got := BuildEntries(entries)
	if len(got) != 2 {
		t.Fatalf("BuildEntries() returned %d texts, want 2", len(got))
	}
	if !strings.HasPrefix(got[0], "@misc{b") || !strings.HasPrefix(got[1], "@misc{a") {
		t.Errorf("BuildEntries() order = %q", got)
	}
}

func TestBuildMap(t *testing.T) {
	m, err := ParseMap(`@misc{b, title = {B}} @misc{a, title = {A}}`, Options{})
	if err != nil {
		t.Fatalf("ParseMap() error = %v", err)
	}
	got := BuildMap(m)
	want := []string{"@misc{a,\n\ttitle = {A}\n}", "@misc{b,\n\ttitle = {B}\n}"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildMap() = %q, want %q", got, want)
	}
}

func TestWriteEntries(t *testing.T) {
	entries := mustParse(t, `@misc{a, title = {A}} @misc{b, title = {B}}`)
	var buf bytes.Buffer
	if err := WriteEntries(&buf, entries); err != nil {
		t.Fatalf("WriteEntries() error = %v", err)
	}
	want := "@misc{a,\n\ttitle = {A}\n}\n\n@misc{b,\n\ttitle = {B}\n}\n"
	if buf.String() != want {
		t.Errorf("WriteEntries() = %q, want %q", buf.String(), want)
	}
}

func TestBuildRoundTrip(t *testing.T) {
	src := `
@string{pub = "Springer"}
@article{FuMetalhalide2019,
    author = "Yongping Fu and Zhu, Haiming and Jie Chen",
    journal = {Nature Reviews Materials},
    month = feb,
    pages = {169--188},
    publisher = pub # { Science and Business Media {LLC}},
    title = {Metal halide perovskite nanostructures for {M\"o}ssbauer \& more},
    note = "He said {hi}",
    year = 2019,
}

@inproceedings{Liu2016,
    author = {M{\"u}ller, J{\"o}rg},
    title = {Photocatalytic hydrogen with an unanchored {NiSx} co-catalyst},
    year = {2016}
}`
	original := mustParse(t, src)
	rebuilt := mustParse(t, strings.Join(BuildEntries(original), "\n\n"))

	if len(rebuilt) != len(original) {
		t.Fatalf("round trip produced %d entries, want %d", len(rebuilt), len(original))
	}
	for i := range original {
		o, r := original[i], rebuilt[i]
		if o.Type != r.Type || o.Key != r.Key {
			t.Errorf("entry %d: %s/%s became %s/%s", i, o.Type, o.Key, r.Type, r.Key)
		}
		if !reflect.DeepEqual(o.Names(), r.Names()) {
			t.Errorf("entry %s: fields %q became %q", o.Key, o.Names(), r.Names())
		}
		for _, f := range o.Fields {
			if got := r.Raw(f.Name); got != f.RawValue {
				t.Errorf("entry %s field %s: raw value %q became %q", o.Key, f.Name, f.RawValue, got)
			}
		}
	}

	if got := rebuilt[0].Raw("publisher"); got != "Springer Science and Business Media {LLC}" {
		t.Errorf("expanded macro lost in round trip: %q", got)
	}
}
