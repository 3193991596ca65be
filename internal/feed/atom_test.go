package feed

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-map/internal/domain"
)

const atomHeader = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:georss="http://www.georss.org/georss">
<title>USGS Magnitude 2.5+ Earthquakes, Past Week</title>`

func atomDoc(entries ...string) []byte {
	return []byte(atomHeader + strings.Join(entries, "\n") + "</feed>")
}

func entry(id, title, point, elev, age string) string {
	var b strings.Builder
	b.WriteString("<entry>")
	if id != "" {
		fmt.Fprintf(&b, "<id>%s</id>", id)
	}
	fmt.Fprintf(&b, "<title>%s</title>", title)
	if point != "" {
		fmt.Fprintf(&b, "<georss:point>%s</georss:point>", point)
	}
	if elev != "" {
		fmt.Fprintf(&b, "<georss:elev>%s</georss:elev>", elev)
	}
	if age != "" {
		fmt.Fprintf(&b, `<category label="Age" term="%s"/>`, age)
	}
	b.WriteString(`<category label="Magnitude" term="Magnitude 5"/>`)
	b.WriteString("</entry>")
	return b.String()
}

func TestParseEvents(t *testing.T) {
	raw := atomDoc(
		entry("urn:earthquake-usgs-gov:us:7000m9g4", "M 5.2 - 10 km SW of Hualien City, Taiwan", "23.9 121.5", "-35000", "Past Day"),
		entry("urn:earthquake-usgs-gov:ak:0245", "M 2.9 - 40 km W of Anchor Point, Alaska", "59.8 -152.6", "-82300", "Past Week"),
	)

	batch, err := ParseEvents(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Entries)
	assert.Empty(t, batch.Skipped)
	require.Len(t, batch.Events, 2)

	e := batch.Events[0]
	assert.Equal(t, "urn:earthquake-usgs-gov:us:7000m9g4", e.ID)
	assert.Equal(t, domain.Location{Lat: 23.9, Lon: 121.5}, e.Location)
	assert.Equal(t, 5.2, e.Magnitude)
	assert.Equal(t, 35.0, e.Depth)
	assert.Equal(t, domain.AgePastDay, e.Age)
	assert.Equal(t, "M 5.2 - 10 km SW of Hualien City, Taiwan", e.Title)
	assert.InDelta(t, 10.4, e.Radius, 1e-9)

	assert.Equal(t, 82.3, batch.Events[1].Depth)
	assert.Equal(t, domain.Intermediate, batch.Events[1].DepthTier())
}

func TestParseEvents_DropRule(t *testing.T) {
	raw := atomDoc(
		entry("a", "M 4.0 - has point", "1 2", "-1000", ""),
		entry("summary", "Feed summary", "", "", ""),
		entry("b", "M 4.1 - bad point", "not a point", "-1000", ""),
		entry("c", "M 4.2 - one number", "12.5", "-1000", ""),
	)

	batch, err := ParseEvents(raw)
	require.NoError(t, err)
	assert.Equal(t, 4, batch.Entries)
	assert.LessOrEqual(t, len(batch.Events), batch.Entries)
	require.Len(t, batch.Events, 1)
	assert.Equal(t, "a", batch.Events[0].ID)

	assert.Equal(t, []Skipped{
		{Index: 1, ID: "summary", Reason: ReasonNoPoint},
		{Index: 2, ID: "b", Reason: ReasonNoPoint},
		{Index: 3, ID: "c", Reason: ReasonNoPoint},
	}, batch.Skipped)
	assert.Equal(t, map[string]int{ReasonNoPoint: 3}, batch.SkipCounts())
}

func TestParseEvents_Depth(t *testing.T) {
	tests := []struct {
		elev string
		want float64
	}{
		{"-10000", 10.0},
		{"10000", 10.0},
		{"-35000", 35.0},
		{"-12345", 12.3},
		{"-99", 0},
		{"0", 0},
		{"-660450", 660.4},
	}
	for _, tt := range tests {
		t.Run(tt.elev, func(t *testing.T) {
			batch, err := ParseEvents(atomDoc(entry("x", "M 3.0 - x", "0 0", tt.elev, "")))
			require.NoError(t, err)
			require.Len(t, batch.Events, 1)
			assert.InDelta(t, tt.want, batch.Events[0].Depth, 1e-9)
			assert.GreaterOrEqual(t, batch.Events[0].Depth, 0.0)
		})
	}
}

func TestParseEvents_Magnitude(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		want    float64
		dropped bool
	}{
		{"fixed offset", "M 6.1 - Near Coast of Chile", 6.1, false},
		{"fallback to first number", "Mww 7.3 - Kuril Islands", 7.3, false},
		{"two digit magnitude", "M 10.0 - hypothetical", 10.0, false},
		{"integer token", "Magnitude 5 event", 5, false},
		{"no number", "Earthquake near Lima", 0, true},
		{"negative", "M -0.5 - 10 km N of Somewhere", 0, true},
		{"negative integer", "Mb -1 event", 0, true},
		{"empty title", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ParseEvents(atomDoc(entry("x", tt.title, "0 0", "-1000", "")))
			require.NoError(t, err)
			if tt.dropped {
				assert.Empty(t, batch.Events)
				require.Len(t, batch.Skipped, 1)
				assert.Equal(t, ReasonBadMagnitude, batch.Skipped[0].Reason)
				return
			}
			require.Len(t, batch.Events, 1)
			assert.Equal(t, tt.want, batch.Events[0].Magnitude)
		})
	}
}

func TestParseEvents_NonFinitePoint(t *testing.T) {
	raw := atomDoc(
		entry("nan", "M 5.0 - x", "NaN 10", "-1000", ""),
		entry("inf", "M 5.0 - x", "10 Inf", "-1000", ""),
		entry("both", "M 5.0 - x", "NaN Inf", "-1000", ""),
		entry("ok", "M 5.0 - x", "10 10", "-1000", ""),
	)
	batch, err := ParseEvents(raw)
	require.NoError(t, err)
	require.Len(t, batch.Events, 1)
	assert.Equal(t, "ok", batch.Events[0].ID)
	assert.Equal(t, map[string]int{ReasonNoPoint: 3}, batch.SkipCounts())
}

func TestParseEvents_BadElevation(t *testing.T) {
	raw := atomDoc(
		entry("missing", "M 3.0 - x", "0 0", "", ""),
		entry("text", "M 3.0 - x", "0 0", "deep", ""),
	)
	batch, err := ParseEvents(raw)
	require.NoError(t, err)
	assert.Empty(t, batch.Events)
	assert.Equal(t, map[string]int{ReasonBadElevation: 2}, batch.SkipCounts())
}

func TestParseEvents_Age(t *testing.T) {
	raw := atomDoc(
		entry("hour", "M 3.0 - x", "0 0", "-1000", "Past Hour"),
		entry("none", "M 3.0 - x", "0 0", "-1000", ""),
	)
	batch, err := ParseEvents(raw)
	require.NoError(t, err)
	require.Len(t, batch.Events, 2)
	assert.Equal(t, domain.AgePastHour, batch.Events[0].Age)
	assert.True(t, batch.Events[0].Recent())
	assert.Equal(t, "", batch.Events[1].Age)
}

func TestParseEvents_PreservesOrder(t *testing.T) {
	var entries []string
	for i := range 20 {
		entries = append(entries, entry(fmt.Sprintf("e%02d", i), "M 3.0 - x", fmt.Sprintf("%d 0", i), "-1000", ""))
	}
	batch, err := ParseEvents(atomDoc(entries...))
	require.NoError(t, err)
	require.Len(t, batch.Events, 20)
	for i, e := range batch.Events {
		assert.Equal(t, fmt.Sprintf("e%02d", i), e.ID)
	}
}

func TestParseEvents_Malformed(t *testing.T) {
	_, err := ParseEvents([]byte("<feed><entry>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode atom feed")
}

func TestParseEvents_NoEntries(t *testing.T) {
	batch, err := ParseEvents(atomDoc())
	require.NoError(t, err)
	assert.Equal(t, 0, batch.Entries)
	assert.Empty(t, batch.Events)
}
