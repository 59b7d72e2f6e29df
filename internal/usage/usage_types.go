package usage

// Stats holds token counters broken down by dimension.
type Stats struct {
	Requests    int                    `json:"requests"`
	Total       TokenCounts            `json:"total"`
	ByModel     map[string]TokenCounts `json:"by_model"`
	ByOperation map[string]TokenCounts `json:"by_operation"` // chat, continue
}

// TokenCounts holds input/output sums. Input is the prompt side
// (prompt_eval_count), Output the generated side (eval_count).
type TokenCounts struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

func (tc *TokenCounts) Add(input, output int) {
	tc.Input += int64(input)
	tc.Output += int64(output)
	tc.Total += int64(input + output)
}
