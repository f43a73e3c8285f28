package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCompanyFile はテスト用の企業リストJSONを作成します。
func writeCompanyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companies_list.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSymbolFile_ListActive(t *testing.T) {
	path := writeCompanyFile(t, `[
		"TCS__Tata Consultancy Services",
		"AXISBANK__Axis Bank",
		"AXISBANK__Axis Bank Duplicate",
		"no-separator-entry",
		"__Missing Code",
		"INFY__Infosys"
	]`)
	repo := NewSymbolFileRepository(path)

	symbols, err := repo.ListActive(context.Background())
	assert.NoError(t, err)
	require.Len(t, symbols, 3)

	// コード昇順に並び、SortKeyが位置を保持する
	assert.Equal(t, "AXISBANK", symbols[0].Code)
	assert.Equal(t, "Axis Bank", symbols[0].Name)
	assert.Equal(t, 0, symbols[0].SortKey)
	assert.Equal(t, "INFY", symbols[1].Code)
	assert.Equal(t, 1, symbols[1].SortKey)
	assert.Equal(t, "TCS", symbols[2].Code)
	assert.Equal(t, "NSE", symbols[2].Exchange)
	assert.True(t, symbols[2].IsActive)
}

func TestSymbolFile_ListActiveCodes(t *testing.T) {
	path := writeCompanyFile(t, `["INFY__Infosys","AXISBANK__Axis Bank"]`)
	repo := NewSymbolFileRepository(path)

	codes, err := repo.ListActiveCodes(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"AXISBANK", "INFY"}, codes)
}

func TestSymbolFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		repo := NewSymbolFileRepository(filepath.Join(t.TempDir(), "missing.json"))
		_, err := repo.ListActive(context.Background())
		assert.Error(t, err)
	})

	t.Run("not a JSON array", func(t *testing.T) {
		repo := NewSymbolFileRepository(writeCompanyFile(t, `{"companies":[]}`))
		_, err := repo.ListActive(context.Background())
		assert.Error(t, err)
	})
}
