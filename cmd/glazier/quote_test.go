package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
	  "currency": "SEK",
	  "tax_deduction": {"enabled": true, "percent": 30},
	  "catalog": {
	    "glass": {"name": "Float glass", "unit_price_excl_tax": 1000, "vat_rate": 25, "pricing_model": "per_area"},
	    "labor": {"name": "Installation", "unit_price_excl_tax": 500, "vat_rate": 25, "pricing_model": "per_duration"}
	  },
	  "lines": [
	    {"catalog_item_id": "glass", "count": 2, "width_mm": 1000, "height_mm": 500},
	    {"catalog_item_id": "labor", "count": 1, "duration_hours": 2.5}
	  ]
	}`), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"quote", path})
	require.NoError(t, rootCmd.Execute())

	text := out.String()
	assert.Contains(t, text, "Float glass")
	assert.Contains(t, text, "Total incl. VAT:  2 812,50 SEK")
	assert.Contains(t, text, "ROT deduction:    -468,75 SEK")
	assert.Contains(t, text, "To pay:           2 343,75 SEK")
}
