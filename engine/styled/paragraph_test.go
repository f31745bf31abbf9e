package styled

import (
	"testing"

	"github.com/npillmayer/mdstyle/core/richtext"
	"github.com/npillmayer/mdstyle/input/markdown"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRuns(t *testing.T, para *Paragraph) []Run {
	t.Helper()
	var runs []Run
	require.NoError(t, para.ForEachStyleRun(func(run Run) error {
		runs = append(runs, run)
		return nil
	}))
	return runs
}

func TestParagraphRuns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.backend")
	defer teardown()
	//
	buf := richtext.NewBuffer("plain bold end")
	require.NoError(t, buf.AddAttribute(richtext.Bold, true, 6, 10))
	para, err := ParagraphFromBuffer(buf)
	require.NoError(t, err)
	assert.Equal(t, "plain bold end", para.Raw().String())
	runs := collectRuns(t, para)
	require.Len(t, runs, 3)
	assert.Equal(t, "plain ", runs[0].Text)
	assert.False(t, runs[0].StyleSet.Has(richtext.Bold))
	assert.Equal(t, "bold", runs[1].Text)
	assert.Equal(t, uint64(6), runs[1].Position)
	assert.True(t, runs[1].StyleSet.Has(richtext.Bold))
	assert.Equal(t, " end", runs[2].Text)
	//
	set, i, err := para.StyleAt(7)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), i)
	assert.Equal(t, true, set.Get(richtext.Bold))
	assert.Equal(t, "{bold}", set.String())
	set, i, err = para.StyleAt(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), i)
	assert.False(t, set.Has(richtext.Bold))
	set, _, err = para.StyleAt(13)
	require.NoError(t, err)
	assert.Equal(t, "{}", set.String())
	_, _, err = para.StyleAt(14)
	assert.Error(t, err)
}

func TestParagraphFromMarkdown(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.backend")
	defer teardown()
	//
	doc := markdown.Parse("# Title **bold**", nil, nil)
	para, err := ParagraphFromBuffer(doc.Buffer)
	require.NoError(t, err)
	runs := collectRuns(t, para)
	require.Len(t, runs, 2)
	assert.Equal(t, "# Title ", runs[0].Text)
	assert.True(t, runs[0].StyleSet.Has(richtext.Header(1)))
	assert.Equal(t, "bold", runs[1].Text)
	assert.True(t, runs[1].StyleSet.Has(richtext.Header(1)))
	assert.True(t, runs[1].StyleSet.Has(richtext.Bold))
}

func TestParagraphEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.backend")
	defer teardown()
	//
	para, err := ParagraphFromBuffer(richtext.NewBuffer(""))
	require.NoError(t, err)
	assert.Empty(t, collectRuns(t, para))
	_, err = ParagraphFromBuffer(nil)
	assert.Error(t, err)
}

func TestSetEquals(t *testing.T) {
	a := Set{attrs: richtext.Attributes{richtext.Bold: true}}
	b := Set{attrs: richtext.Attributes{richtext.Bold: true}}
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(Set{}))
	assert.True(t, Set{}.Equals(Set{attrs: richtext.Attributes{}}))
}
