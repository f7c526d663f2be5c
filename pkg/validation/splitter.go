package validation

import "github.com/altommo/crypto-grid-trader/pkg/types"

// SplitByRatio splits a chronologically ordered series into train/test
// slices. A ratio outside (0,1), or one leaving either side empty, returns
// the whole series as train and a nil test slice.
func SplitByRatio(data []types.OHLCV, ratio float64) ([]types.OHLCV, []types.OHLCV) {
	if ratio <= 0 || ratio >= 1 {
		return data, nil
	}

	n := int(float64(len(data)) * ratio)
	if n < 1 || n >= len(data) {
		return data, nil
	}

	return data[:n], data[n:]
}

// SplitWindows partitions a series into count contiguous equal-size slices,
// dropping the remainder. Too little data yields no windows.
func SplitWindows(data []types.OHLCV, count int) [][]types.OHLCV {
	if count <= 0 || len(data) < count {
		return nil
	}

	size := len(data) / count
	windows := make([][]types.OHLCV, 0, count)
	for i := 0; i < count; i++ {
		windows = append(windows, data[i*size:(i+1)*size])
	}
	return windows
}
