package sentiment

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Model wraps an ONNX tone regression session. The model takes BERT-style
// input_ids and attention_mask and produces two logits: polarity and
// subjectivity. Polarity is squashed to [-1, 1], subjectivity to [0, 1].
type Model struct {
	session   *ort.AdvancedSession
	tokenizer *WordPieceTokenizer
	seqLen    int

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	mu sync.Mutex
}

// LoadModel initializes the ONNX session and tokenizer from modelDir.
// The directory must contain tone.onnx and tokenizer/vocab.txt.
func LoadModel(modelDir string, seqLen int) (*Model, error) {
	if modelDir == "" {
		return nil, errors.New("modelDir is empty")
	}
	if seqLen <= 0 {
		seqLen = 256
	}

	libPath := resolveSharedLibraryPath(modelDir)
	if libPath == "" {
		return nil, fmt.Errorf("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(modelDir, "tone.onnx")
	vocabPath := filepath.Join(modelDir, "tokenizer", "vocab.txt")

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	tokenizer, err := LoadWordPieceTokenizer(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	inputShape := ort.NewShape(1, int64(seqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Model{
		session:       session,
		tokenizer:     tokenizer,
		seqLen:        seqLen,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		output:        output,
	}, nil
}

// Infer runs the tone model over text.
func (m *Model) Infer(text string) (polarity, subjectivity float64, err error) {
	if m == nil || m.session == nil || m.tokenizer == nil {
		return 0, 0, errors.New("tone model not initialized")
	}

	inputIDs, attn := m.tokenizer.Encode(text, m.seqLen)

	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.inputIDs.GetData(), inputIDs)
	copy(m.attentionMask.GetData(), attn)

	if err := m.session.Run(); err != nil {
		return 0, 0, fmt.Errorf("onnx run: %w", err)
	}

	raw := m.output.GetData()
	if len(raw) < 2 {
		return 0, 0, fmt.Errorf("unexpected output length %d", len(raw))
	}
	polarity = math.Tanh(float64(raw[0]))
	subjectivity = 1.0 / (1.0 + math.Exp(-float64(raw[1])))
	return polarity, subjectivity, nil
}

// resolveSharedLibraryPath attempts to locate a platform-specific onnxruntime
// shared library. If ONNXRUNTIME_SHARED_LIBRARY_PATH is set, it wins;
// otherwise we probe common names/locations.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
