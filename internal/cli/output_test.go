package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinterTextMode(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	p := &Printer{Out: out, ErrOut: errOut}

	p.Success("started %q", "web")
	p.Info("plain note")
	p.Warn("be careful")
	p.Error("it broke")

	assert.Equal(t, "✓ started \"web\"\nplain note\n", out.String())
	assert.Equal(t, "! be careful\n✗ it broke\n", errOut.String())
}

func TestPrinterQuiet(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	p := &Printer{Quiet: true, Out: out, ErrOut: errOut}

	p.Success("hidden")
	p.Info("hidden")
	p.Error("still shown")

	assert.Empty(t, out.String())
	assert.Equal(t, "✗ still shown\n", errOut.String())
}

func TestPrinterJSONSuppressesText(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	p := &Printer{JSON: true, Out: out, ErrOut: errOut}

	p.Success("hidden")
	p.Error("hidden too")
	require.NoError(t, p.Document(map[string]string{"name": "web"}))

	assert.Empty(t, errOut.String())

	var doc map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "web", doc["name"])
}

func TestPrinterDocumentNoopWithoutJSON(t *testing.T) {
	out := &bytes.Buffer{}
	p := &Printer{Out: out}

	require.NoError(t, p.Document(map[string]string{"name": "web"}))
	assert.Empty(t, out.String())
}

func TestPrinterColor(t *testing.T) {
	out := &bytes.Buffer{}
	p := &Printer{Color: true, Out: out, ErrOut: out}

	p.Success("ok")
	assert.Contains(t, out.String(), ansiGreen)
	assert.Contains(t, out.String(), ansiReset)
}
