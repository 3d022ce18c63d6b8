package embeddings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"

	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
)

// ONNX provider constants. Defaults match the all-MiniLM-L6-v2 sentence-transformer export.
const (
	onnxDefaultDimensions = 384
	onnxDefaultMaxSeqLen  = 256
	onnxPadID             = 0

	onnxInputIDs        = "input_ids"
	onnxAttentionMask   = "attention_mask"
	onnxTokenTypeIDs    = "token_type_ids"
	onnxLastHiddenState = "last_hidden_state"
)

// ErrONNXPathsRequired is returned when the model or tokenizer path is missing.
var ErrONNXPathsRequired = errors.New("onnx model and tokenizer paths are required")

// ONNXConfig holds configuration for the local ONNX provider.
type ONNXConfig struct {
	LibraryPath   string // onnxruntime shared library; platform default when empty
	ModelPath     string
	TokenizerPath string // HuggingFace tokenizer.json
	MaxSeqLen     int
	Dimensions    int
	Priority      int
}

// ONNXProvider runs a sentence-transformer locally and mean-pools its token
// embeddings into one unit-length vector per text.
type ONNXProvider struct {
	session    *ort.DynamicAdvancedSession
	tk         *tokenizer.Tokenizer
	maxSeqLen  int
	dimensions int
	priority   int
	mu         sync.Mutex
	logger     *zerolog.Logger
}

// NewONNXProvider loads the tokenizer and model. Load failures wrap ErrModelUnavailable.
func NewONNXProvider(cfg ONNXConfig, logger *zerolog.Logger) (*ONNXProvider, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, fmt.Errorf("%w: %w", graderrors.ErrModelUnavailable, ErrONNXPathsRequired)
	}

	for _, path := range []string{cfg.ModelPath, cfg.TokenizerPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %w", graderrors.ErrModelUnavailable, err)
		}
	}

	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = onnxDefaultMaxSeqLen
	}

	if cfg.Dimensions <= 0 {
		cfg.Dimensions = onnxDefaultDimensions
	}

	if cfg.Priority == 0 {
		cfg.Priority = PriorityPrimary
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: loading tokenizer: %w", graderrors.ErrModelUnavailable, err)
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}

	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("%w: initializing onnxruntime: %w", graderrors.ErrModelUnavailable, err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{onnxInputIDs, onnxAttentionMask, onnxTokenTypeIDs},
		[]string{onnxLastHiddenState},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating onnx session: %w", graderrors.ErrModelUnavailable, err)
	}

	logger.Info().
		Str("model", cfg.ModelPath).
		Int("max_seq_len", cfg.MaxSeqLen).
		Int("dimensions", cfg.Dimensions).
		Msg("loaded onnx embedding model")

	return &ONNXProvider{
		session:    session,
		tk:         tk,
		maxSeqLen:  cfg.MaxSeqLen,
		dimensions: cfg.Dimensions,
		priority:   cfg.Priority,
		logger:     logger,
	}, nil
}

// Name returns the provider identifier.
func (p *ONNXProvider) Name() ProviderName {
	return ProviderONNX
}

// Priority returns the provider priority.
func (p *ONNXProvider) Priority() int {
	return p.priority
}

// Dimensions returns the hidden size of the model.
func (p *ONNXProvider) Dimensions() int {
	return p.dimensions
}

// IsAvailable returns true while the session is open.
func (p *ONNXProvider) IsAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.session != nil
}

// Embed tokenizes texts into one padded batch and runs a single inference pass.
func (p *ONNXProvider) Embed(ctx context.Context, texts []string) (EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return EmbeddingResult{}, fmt.Errorf("onnx embed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return EmbeddingResult{}, fmt.Errorf("%w: onnx session closed", graderrors.ErrInferenceFailed)
	}

	batch, err := p.encode(texts)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("%w: %w", graderrors.ErrInferenceFailed, err)
	}

	hidden, err := p.run(batch)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("%w: %w", graderrors.ErrInferenceFailed, err)
	}

	return newResult(ProviderONNX, meanPool(hidden, batch.mask, len(texts), batch.seqLen, p.dimensions)), nil
}

// Close releases the session and the runtime environment.
func (p *ONNXProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil
	}

	if err := p.session.Destroy(); err != nil {
		return fmt.Errorf("destroying onnx session: %w", err)
	}

	p.session = nil

	if err := ort.DestroyEnvironment(); err != nil {
		return fmt.Errorf("destroying onnx environment: %w", err)
	}

	return nil
}

// encodedBatch holds row-major [batch, seqLen] model inputs.
type encodedBatch struct {
	ids    []int64
	mask   []int64
	types  []int64
	seqLen int
}

func (p *ONNXProvider) encode(texts []string) (encodedBatch, error) {
	rows := make([]tokenRow, len(texts))
	seqLen := 1

	for i, text := range texts {
		en, err := p.tk.EncodeSingle(text, true)
		if err != nil {
			return encodedBatch{}, fmt.Errorf("tokenizing: %w", err)
		}

		rows[i] = truncateRow(tokenRow{ids: en.Ids, mask: en.AttentionMask, types: en.TypeIds}, p.maxSeqLen)
		if n := len(rows[i].ids); n > seqLen {
			seqLen = n
		}
	}

	return padRows(rows, seqLen), nil
}

func (p *ONNXProvider) run(batch encodedBatch) ([]float32, error) {
	rowsCount := int64(len(batch.ids) / batch.seqLen)
	shape := ort.NewShape(rowsCount, int64(batch.seqLen))

	idsTensor, err := ort.NewTensor(shape, batch.ids)
	if err != nil {
		return nil, fmt.Errorf("creating input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, batch.mask)
	if err != nil {
		return nil, fmt.Errorf("creating attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typesTensor, err := ort.NewTensor(shape, batch.types)
	if err != nil {
		return nil, fmt.Errorf("creating token_type_ids tensor: %w", err)
	}
	defer typesTensor.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(rowsCount, int64(batch.seqLen), int64(p.dimensions)))
	if err != nil {
		return nil, fmt.Errorf("creating output tensor: %w", err)
	}
	defer output.Destroy()

	err = p.session.Run(
		[]ort.ArbitraryTensor{idsTensor, maskTensor, typesTensor},
		[]ort.ArbitraryTensor{output},
	)
	if err != nil {
		return nil, fmt.Errorf("running onnx session: %w", err)
	}

	data := output.GetData()
	out := make([]float32, len(data))
	copy(out, data)

	return out, nil
}

type tokenRow struct {
	ids   []int
	mask  []int
	types []int
}

// truncateRow caps a row at maxLen tokens, keeping the trailing separator token.
func truncateRow(row tokenRow, maxLen int) tokenRow {
	n := len(row.ids)
	if n <= maxLen || maxLen < 2 {
		return row
	}

	cut := func(s []int) []int {
		if len(s) != n {
			return s
		}

		out := make([]int, maxLen)
		copy(out, s[:maxLen-1])
		out[maxLen-1] = s[n-1]

		return out
	}

	return tokenRow{ids: cut(row.ids), mask: cut(row.mask), types: cut(row.types)}
}

// padRows lays rows out row-major with padding up to seqLen.
func padRows(rows []tokenRow, seqLen int) encodedBatch {
	batch := encodedBatch{
		ids:    make([]int64, len(rows)*seqLen),
		mask:   make([]int64, len(rows)*seqLen),
		types:  make([]int64, len(rows)*seqLen),
		seqLen: seqLen,
	}

	for r, row := range rows {
		base := r * seqLen

		for i := range row.ids {
			batch.ids[base+i] = int64(row.ids[i])
			batch.mask[base+i] = 1

			if i < len(row.mask) {
				batch.mask[base+i] = int64(row.mask[i])
			}

			if i < len(row.types) {
				batch.types[base+i] = int64(row.types[i])
			}
		}

		for i := len(row.ids); i < seqLen; i++ {
			batch.ids[base+i] = onnxPadID
		}
	}

	return batch
}

// meanPool averages token embeddings of a [batch, seqLen, dims] tensor over
// the attended positions and L2-normalizes each row.
func meanPool(hidden []float32, mask []int64, batch, seqLen, dims int) [][]float32 {
	out := make([][]float32, batch)

	for b := 0; b < batch; b++ {
		vec := make([]float32, dims)

		var count float32

		for t := 0; t < seqLen; t++ {
			if mask[b*seqLen+t] == 0 {
				continue
			}

			count++

			offset := (b*seqLen + t) * dims
			for d := 0; d < dims; d++ {
				vec[d] += hidden[offset+d]
			}
		}

		if count > 0 {
			for d := range vec {
				vec[d] /= count
			}
		}

		out[b] = l2Normalize(vec)
	}

	return out
}
