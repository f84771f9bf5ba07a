package converter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/export"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/layout"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/nfexml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const sampleKey = "35240612345678000190650010000004561000004563"

const keylessXML = `<?xml version="1.0" encoding="UTF-8"?>
<NFe xmlns="http://www.portalfiscal.inf.br/nfe">
  <infNFe versao="4.00">
    <ide><nNF>12</nNF><dhEmi>2024-06-16T09:00:00-03:00</dhEmi></ide>
    <emit><xNome>PADARIA CENTRAL LTDA</xNome></emit>
    <det nItem="1">
      <prod>
        <cProd>55</cProd><xProd>CAFE COADO</xProd>
        <qCom>1.0000</qCom><uCom>UN</uCom>
        <vUnCom>6.50</vUnCom><vProd>6.50</vProd>
      </prod>
    </det>
    <total><ICMSTot><vProd>6.50</vProd><vNF>6.50</vNF></ICMSTot></total>
  </infNFe>
</NFe>`

// fixtures writes the three batch inputs into a fresh directory.
func fixtures(t *testing.T) (dir string, good, broken, keyless string) {
	t.Helper()
	dir = t.TempDir()

	sample, err := os.ReadFile(filepath.Join("..", "nfce", "testdata", "nfce_proc.xml"))
	require.NoError(t, err)

	good = filepath.Join(dir, "a_nota.xml")
	broken = filepath.Join(dir, "b_quebrada.xml")
	keyless = filepath.Join(dir, "c_semchave.xml")

	require.NoError(t, os.WriteFile(good, sample, 0o644))
	require.NoError(t, os.WriteFile(broken, []byte("<NFe><infNFe>"), 0o644))
	require.NoError(t, os.WriteFile(keyless, []byte(keylessXML), 0o644))
	return dir, good, broken, keyless
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		nameByKey bool
		want      string
	}{
		{"key", sampleKey, true, filepath.Join("out", sampleKey+".pdf")},
		{"empty key falls back to stem", "", true, filepath.Join("out", "nota.pdf")},
		{"naming by key disabled", sampleKey, false, filepath.Join("out", "nota.pdf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputPath(filepath.Join("in", "nota.xml"), "out", tt.key, tt.nameByKey))
		})
	}
}

func TestConvert(t *testing.T) {
	_, good, broken, keyless := fixtures(t)

	t.Run("into directory by key", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "pdf")
		result := New(layout.A4(), true, zap.NewNop()).Convert(good, out)

		require.True(t, result.Success, "%v", result.Error)
		assert.Equal(t, filepath.Join(out, sampleKey+".pdf"), result.OutputFile)
		assert.Equal(t, sampleKey, result.AccessKey)
		assert.Equal(t, 2, result.Stats.Items)
		assert.Equal(t, 1, result.Stats.Pages)
		assert.Zero(t, result.Stats.Warnings)
		assert.Len(t, result.Rows, 2)
		assertPDF(t, result.OutputFile)
	})

	t.Run("explicit pdf path", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "nested", "danfe.PDF")
		result := New(layout.Roll80(), true, nil).Convert(good, dst)

		require.True(t, result.Success, "%v", result.Error)
		assert.Equal(t, dst, result.OutputFile)
		assertPDF(t, dst)
	})

	t.Run("missing key is a warning", func(t *testing.T) {
		out := t.TempDir()
		result := New(layout.A4(), true, nil).Convert(keyless, out)

		require.True(t, result.Success, "%v", result.Error)
		assert.Equal(t, filepath.Join(out, "c_semchave.pdf"), result.OutputFile)
		assert.Empty(t, result.AccessKey)
		assert.Equal(t, 1, result.Stats.Warnings)
	})

	t.Run("validation report at debug level", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		result := New(layout.A4(), true, zap.New(core)).Convert(keyless, t.TempDir())
		require.True(t, result.Success, "%v", result.Error)

		assert.Equal(t, 1, logs.FilterMessage("Validation warning").Len())
		reports := logs.FilterMessage("Validation report").All()
		require.Len(t, reports, 1)
		assert.Contains(t, reports[0].ContextMap()["report"], "Validation completed with 1 warning(s)")
	})

	t.Run("malformed source", func(t *testing.T) {
		out := t.TempDir()
		result := New(layout.A4(), true, nil).Convert(broken, out)

		assert.False(t, result.Success)
		assert.ErrorIs(t, result.Error, nfexml.ErrMalformedSource)
		assert.Empty(t, result.OutputFile)

		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("missing source", func(t *testing.T) {
		result := New(layout.A4(), true, nil).Convert(filepath.Join(t.TempDir(), "none.xml"), t.TempDir())
		assert.False(t, result.Success)
		assert.Error(t, result.Error)
	})
}

func TestBatchRun(t *testing.T) {
	_, good, broken, keyless := fixtures(t)
	out := filepath.Join(t.TempDir(), "out")

	batch := NewBatch(New(layout.A4(), true, nil), out, zap.NewNop())
	batch.ExportPath = filepath.Join(out, export.DefaultFileName)

	var progress [][2]int
	batch.Progress = func(done, total int) {
		progress = append(progress, [2]int{done, total})
	}

	summary := batch.Run([]string{keyless, broken, good})

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, good, summary.Results[0].FilePath)
	assert.Equal(t, broken, summary.Results[1].FilePath)
	assert.Equal(t, keyless, summary.Results[2].FilePath)

	assert.True(t, summary.Results[0].Success)
	assert.ErrorIs(t, summary.Results[1].Error, nfexml.ErrMalformedSource)
	assert.True(t, summary.Results[2].Success, "documents after a failure are still processed")

	assertPDF(t, filepath.Join(out, sampleKey+".pdf"))
	assertPDF(t, filepath.Join(out, "c_semchave.pdf"))

	require.Len(t, summary.Rows, 3)
	assert.Equal(t, sampleKey, summary.Rows[0].AccessKey)
	assert.Equal(t, "CAFE COADO", summary.Rows[2].Description)

	require.NoError(t, summary.ExportError)
	assert.Equal(t, batch.ExportPath, summary.ExportFile)
	assert.Equal(t, 3, summary.Exported)
	assert.FileExists(t, batch.ExportPath)
}

func TestBatchExportFailureKeepsResults(t *testing.T) {
	_, good, _, _ := fixtures(t)
	out := t.TempDir()

	batch := NewBatch(New(layout.A4(), true, nil), out, nil)
	batch.ExportPath = filepath.Join(out, "itens.ods")

	summary := batch.Run([]string{good})

	assert.Equal(t, 1, summary.Succeeded)
	assert.ErrorIs(t, summary.ExportError, export.ErrUnsupportedFormat)
	assert.Empty(t, summary.ExportFile)
	assertPDF(t, filepath.Join(out, sampleKey+".pdf"))
}

func TestBatchWithoutRowsWritesNoTable(t *testing.T) {
	_, _, broken, _ := fixtures(t)
	out := t.TempDir()

	batch := NewBatch(New(layout.A4(), true, nil), out, nil)
	batch.ExportPath = filepath.Join(out, export.DefaultFileName)

	summary := batch.Run([]string{broken})

	assert.Equal(t, 1, summary.Failed)
	assert.NoError(t, summary.ExportError)
	assert.Zero(t, summary.Exported)
	assert.NoFileExists(t, batch.ExportPath)
}
