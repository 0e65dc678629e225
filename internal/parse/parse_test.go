package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/coach-directory/internal/model"
)

const src = "https://athletics.example.edu/staff"

func TestParse_StructuredBlocks(t *testing.T) {
	text := "NAME: Jane Doe\nPOSITION: Head Coach\nEMAIL: jane@school.edu\n---\nNAME: JOHN SMITH\nPOSITION: Athletic Trainer\n"

	got := New().Parse(text, src)

	want := []model.RawRecord{
		{Name: "Jane Doe", Position: "Head Coach", Email: "jane@school.edu", Source: src},
		{Name: "JOHN SMITH", Position: "Athletic Trainer", Source: src},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_StructuredSplitsOnFirstColonOnly(t *testing.T) {
	text := "name: Jane Doe\nposition: Head Coach\nTwitter: https://twitter.com/janedoe\nPhone: (555) 123-4567 x12\n"

	got := New().Parse(text, src)

	require.Len(t, got, 1)
	assert.Equal(t, "https://twitter.com/janedoe", got[0].SocialHandle)
	assert.Equal(t, "(555) 123-4567 x12", got[0].Phone)
}

func TestParse_StructuredBlankLineSectionsAndMarkdown(t *testing.T) {
	text := "**NAME:** Jane Doe\n**POSITION:** Head Coach\n**EMAIL:** N/A\n\n\n- NAME: Sam Lee\n- POSITION: Assistant Coach\n"

	got := New().Parse(text, src)

	require.Len(t, got, 2)
	assert.Equal(t, "Jane Doe", got[0].Name)
	assert.Empty(t, got[0].Email)
	assert.Equal(t, "Sam Lee", got[1].Name)
	assert.Equal(t, "Assistant Coach", got[1].Position)
}

func TestParse_StructuredPartialNotEmitted(t *testing.T) {
	text := "NAME: Jane Doe\n---\nNAME: Sam Lee\nPOSITION: Assistant Coach\n"

	got := New().Parse(text, src)

	require.Len(t, got, 1)
	assert.Equal(t, "Sam Lee", got[0].Name)
}

func TestParse_StructuredRepeatedNameStartsNewSection(t *testing.T) {
	text := "NAME: Jane Doe\nPOSITION: Head Coach\nNAME: Sam Lee\nPOSITION: Assistant Coach\n"

	got := New().Parse(text, src)

	require.Len(t, got, 2)
	assert.Equal(t, "Head Coach", got[0].Position)
	assert.Equal(t, "Assistant Coach", got[1].Position)
}

func TestParse_JSONShapes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "top-level array",
			text: `[{"name":"Jane Doe","position":"Head Coach"},{"name":"Sam Lee","position":"Assistant Coach"}]`,
			want: []string{"Jane Doe", "Sam Lee"},
		},
		{
			name: "coaches key",
			text: `{"school":"State","coaches":[{"name":"Jane Doe","position":"Head Coach"}]}`,
			want: []string{"Jane Doe"},
		},
		{
			name: "data key",
			text: `{"data":[{"name":"Sam Lee","position":"Assistant Coach"}]}`,
			want: []string{"Sam Lee"},
		},
		{
			name: "first array key in document order",
			text: `{"note":"x","staff":[{"name":"Jane Doe","position":"Head Coach"}],"other":[{"name":"Nope Person","position":"Head Coach"}]}`,
			want: []string{"Jane Doe"},
		},
		{
			name: "code fence",
			text: "Here you go:\n```json\n{\"coaches\": [{\"name\": \"Jane Doe\", \"position\": \"Head Coach\"}]}\n```\n",
			want: []string{"Jane Doe"},
		},
		{
			name: "lenient trailing comma",
			text: `{"coaches": [{"name": "Jane Doe", "position": "Head Coach",},]}`,
			want: []string{"Jane Doe"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(WithOrder(StrategyJSON)).Parse(tt.text, src)
			var names []string
			for _, r := range got {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestParse_DefaultOrderLenientJSON(t *testing.T) {
	text := "{\n coaches: [\n {\n name: 'Jane Doe',\n position: 'Head Coach',\n },\n ],\n}"

	got := New().Parse(text, src)

	want := []model.RawRecord{{Name: "Jane Doe", Position: "Head Coach", Source: src}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_StructuredStripsQuotesAndTrailingCommas(t *testing.T) {
	text := "Staff below.\nname: 'Jane Doe',\nposition: \"Head Coach\",\nemail: jane@school.edu,\n"

	got := New(WithOrder(StrategyStructured)).Parse(text, src)

	want := []model.RawRecord{{Name: "Jane Doe", Position: "Head Coach", Email: "jane@school.edu", Source: src}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JSONFieldAliases(t *testing.T) {
	text := `{"coaches":[{"name":"Jane Doe","title":"Head Coach","email":"jane@school.edu","phone":null,"twitter":"@janedoe"}]}`

	got := New().Parse(text, src)

	want := []model.RawRecord{{
		Name: "Jane Doe", Position: "Head Coach", Email: "jane@school.edu",
		SocialHandle: "@janedoe", Source: src,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_LinesFallback(t *testing.T) {
	text := "Our staff:\n" +
		"1. Jane Doe - Head Coach\n" +
		"2. John Smith – Assistant Coach, jsmith@school.edu\n" +
		"- Mary-Kate Olsen, Associate Head Coach, (555) 123-4567\n" +
		"Call the office at 555-0100 - anytime\n"

	got := New().Parse(text, src)

	want := []model.RawRecord{
		{Name: "Jane Doe", Position: "Head Coach", Source: src},
		{Name: "John Smith", Position: "Assistant Coach", Email: "jsmith@school.edu", Source: src},
		{Name: "Mary-Kate Olsen", Position: "Associate Head Coach", Phone: "(555) 123-4567", Source: src},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_StructuredWinsOverLines(t *testing.T) {
	text := "Jane Doe - Head Coach\n\nNAME: Sam Lee\nPOSITION: Assistant Coach\n"

	got := New().Parse(text, src)

	require.Len(t, got, 1)
	assert.Equal(t, "Sam Lee", got[0].Name)
}

func TestParse_Unparseable(t *testing.T) {
	assert.Empty(t, New().Parse("I could not find a staff directory for that school.", src))
	assert.Empty(t, New().Parse("   ", src))
	assert.Empty(t, New().Parse("{not json at all", src))
}

func TestParse_Limit(t *testing.T) {
	text := "Ann Alpha - Head Coach\nBob Beta - Assistant Coach\nCal Gamma - Assistant Coach\n"

	got := New(WithLimit(2)).Parse(text, src)

	assert.Len(t, got, 2)
}

func TestParse_HTMLTable(t *testing.T) {
	html := `<html><body><table>
<thead><tr><th>Name</th><th>Title</th><th>Phone</th><th>Email</th></tr></thead>
<tbody>
<tr><td>Jane Doe</td><td>Head Coach</td><td>555-123-4567</td><td><a href="mailto:jane@school.edu?subject=hi">Email</a></td></tr>
<tr><th scope="row">Sam  Lee</th><td>Assistant
 Coach</td><td></td><td></td></tr>
</tbody></table></body></html>`

	got := New(WithOrder(StrategyHTML)).Parse(html, src)

	want := []model.RawRecord{
		{Name: "Jane Doe", Position: "Head Coach", Phone: "555-123-4567", Email: "jane@school.edu", Source: src},
		{Name: "Sam Lee", Position: "Assistant Coach", Source: src},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_HTMLCards(t *testing.T) {
	html := `<div class="roster">
<div class="staff-member">
  <h3 class="staff-member__name">John Smith</h3>
  <span class="staff-member__title">Assistant Coach</span>
  <a href="tel:555-123-4567">Call</a>
  <a href="https://twitter.com/jsmith">@jsmith</a>
  <a href="mailto:jsmith@school.edu">Email</a>
</div>
<div class="staff-member"><span class="staff-member__title">Volunteer</span></div>
</div>`

	got := New(WithOrder(StrategyHTML)).Parse(html, src)

	want := []model.RawRecord{{
		Name: "John Smith", Position: "Assistant Coach", Email: "jsmith@school.edu",
		Phone: "555-123-4567", SocialHandle: "https://twitter.com/jsmith", Source: src,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_HTMLIgnoresPlainText(t *testing.T) {
	assert.Empty(t, New(WithOrder(StrategyHTML)).Parse("NAME: Jane Doe\nPOSITION: Head Coach", src))
}

func TestParseOrder(t *testing.T) {
	order, err := ParseOrder([]string{"JSON", " lines "})
	require.NoError(t, err)
	assert.Equal(t, []Strategy{StrategyJSON, StrategyLines}, order)

	order, err = ParseOrder(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOrder, order)

	_, err = ParseOrder([]string{"xml"})
	assert.Error(t, err)
}
