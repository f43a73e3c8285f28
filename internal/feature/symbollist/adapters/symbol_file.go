package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"candle_backend/internal/feature/symbollist/domain/entity"
	"candle_backend/internal/feature/symbollist/usecase"
)

// symbolFile は企業リストJSONファイルをソースとするSymbolRepository実装です。
// ファイルは "CODE__Company Name" 形式の文字列の配列で、区切りを持たない
// エントリーは無視されます。コードで重複排除し、コード昇順に並べます。
type symbolFile struct {
	path string
}

var _ usecase.SymbolRepository = (*symbolFile)(nil)

// NewSymbolFileRepository は指定されたパスのsymbolFileリポジトリを生成します。
func NewSymbolFileRepository(path string) *symbolFile {
	return &symbolFile{path: path}
}

// ListActive は企業リストファイルの全銘柄を返します。
func (r *symbolFile) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read company file: %w", err)
	}
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse company file %s: %w", r.path, err)
	}

	seen := make(map[string]struct{}, len(raw))
	symbols := make([]entity.Symbol, 0, len(raw))
	for _, line := range raw {
		code, name, ok := strings.Cut(line, "__")
		if !ok {
			continue
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		symbols = append(symbols, entity.Symbol{
			Code:     code,
			Name:     strings.TrimSpace(name),
			Exchange: "NSE",
			IsActive: true,
		})
	}

	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Code < symbols[j].Code })
	for i := range symbols {
		symbols[i].SortKey = i
	}
	return symbols, nil
}

// ListActiveCodes は企業リストファイルの銘柄コードのみを返します。
func (r *symbolFile) ListActiveCodes(ctx context.Context) ([]string, error) {
	symbols, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(symbols))
	for _, s := range symbols {
		codes = append(codes, s.Code)
	}
	return codes, nil
}
