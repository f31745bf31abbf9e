package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/npillmayer/mdstyle/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntpConvert(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.cli")
	defer teardown()
	//
	intp, err := newIntp("html", "", "http,https", "", false, time.Second)
	require.NoError(t, err)
	var out bytes.Buffer
	intp.out = &out
	require.NoError(t, intp.convert("**x**"))
	assert.Equal(t, "<div class=\"markdown\"><b>x</b></div>\n", out.String())
	//
	assert.False(t, intp.execute("console"))
	assert.Equal(t, "console", intp.format)
	assert.True(t, intp.execute("quit"))
}

func TestIntpOptions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.cli")
	defer teardown()
	//
	_, err := newIntp("pdf", "", "http", "", false, time.Second)
	assert.True(t, core.IsCode(err, core.EINVALID))
	_, err = newIntp("console", "no-such-theme.yaml", "http", "", false, time.Second)
	assert.True(t, core.IsCode(err, core.EMISSING))
	intp, err := newIntp("console", "", "ht(tp", "", false, time.Second)
	require.NoError(t, err)
	assert.False(t, intp.rules.Has("link"))
}
