package usage

// Data is the root structure stored in persistence.
type Data struct {
	Version   string          `json:"version"`
	Aggregate AggregatedStats `json:"aggregate"`
}

// Operation distinguishes the two kinds of model calls.
type Operation string

const (
	OpImage   Operation = "image"
	OpCaption Operation = "caption"
)

// Event is one finished batch or caption call.
type Event struct {
	Operation  Operation
	Model      string
	TemplateID string
	Requested  int
	Succeeded  int
}

// AggregatedStats holds counters broken down by dimension.
type AggregatedStats struct {
	Total       Counts            `json:"total"`
	ByTemplate  map[string]Counts `json:"by_template"`
	ByModel     map[string]Counts `json:"by_model"`
	ByOperation map[string]Counts `json:"by_operation"`
}

// Counts sums requests, outcomes and tokens.
type Counts struct {
	Calls        int64 `json:"calls"`
	Requested    int64 `json:"requested"`
	Succeeded    int64 `json:"succeeded"`
	Failed       int64 `json:"failed"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Add folds e into c.
func (c *Counts) Add(e Event) {
	c.Calls++
	c.Requested += int64(e.Requested)
	c.Succeeded += int64(e.Succeeded)
	c.Failed += int64(e.Requested - e.Succeeded)
}

// AddTokens adds API-reported token counts.
func (c *Counts) AddTokens(input, output int) {
	c.InputTokens += int64(input)
	c.OutputTokens += int64(output)
}
