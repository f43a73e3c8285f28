package usecase

import "fmt"

// partition は順序付けされた銘柄ユニバースから1始まりのバッチを切り出します。
// batch_size = ceil(len(universe) / totalBatches) の連続スライスで、
// 全バッチを合わせるとユニバースを過不足なく分割します。
func partition(universe []string, batchNo, totalBatches int) ([]string, error) {
	if totalBatches < 1 {
		return nil, fmt.Errorf("%w: total_batches=%d", ErrInvalidBatch, totalBatches)
	}
	if batchNo < 1 || batchNo > totalBatches {
		return nil, fmt.Errorf("%w: batch_no=%d (total_batches=%d)", ErrInvalidBatch, batchNo, totalBatches)
	}

	total := len(universe)
	size := (total + totalBatches - 1) / totalBatches
	start := (batchNo - 1) * size
	if start >= total {
		// 末尾側のバッチはユニバースが小さいと空になりうる
		return []string{}, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return universe[start:end], nil
}
