package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/deep-research/pkg/config"
)

type echoLLM struct {
	answer string
	err    error
	prompt string
	model  string
}

func (e *echoLLM) Generate(_ context.Context, prompt, model string, _ float64) (string, error) {
	e.prompt = prompt
	e.model = model
	return e.answer, e.err
}

func newService(llm *echoLLM) *Service {
	return NewService(llm, &config.Config{WorkerModel: "qwen2.5:3b", WorkingLanguage: "en"})
}

func TestDetect(t *testing.T) {
	s := newService(&echoLLM{})

	tests := []struct {
		name string
		text string
		want string
	}{
		{"Blank", "   ", "en"},
		{"Japanese", "これはにほんごのぶんしょうです", "ja"},
		{"Chinese", "量子计算是什么", "zh"},
		{"Russian", "Что такое квантовые вычисления?", "ru"},
		{"Short German question", "Welche Vorteile hat die Elektromobilität?", "de"},
		{"German question", "Was sind die Vorteile von Solarenergie?", "de"},
		{"English", "What are the latest advances in battery technology?", "en"},
		{"Ambiguous short phrase", "quantum entanglement", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Detect(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate(t *testing.T) {
	t.Run("Same language is identity", func(t *testing.T) {
		llm := &echoLLM{answer: "unused"}

		out, err := newService(llm).Translate(context.Background(), "hello", "en", "EN")

		require.NoError(t, err)
		assert.Equal(t, "hello", out)
		assert.Empty(t, llm.prompt)
	})

	t.Run("Regional codes are normalised", func(t *testing.T) {
		llm := &echoLLM{answer: " What is ramen? \n"}

		out, err := newService(llm).Translate(context.Background(), "拉面是什么", "zh-cn", "en")

		require.NoError(t, err)
		assert.Equal(t, "What is ramen?", out)
		assert.Contains(t, llm.prompt, "from Chinese to English")
		assert.Contains(t, llm.prompt, "拉面是什么")
		assert.Equal(t, "qwen2.5:3b", llm.model)
	})

	t.Run("Unsupported language", func(t *testing.T) {
		_, err := newService(&echoLLM{}).Translate(context.Background(), "olá", "pt", "en")

		var te *TranslationError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "pt", te.Source)
	})

	t.Run("Model failure", func(t *testing.T) {
		modelErr := errors.New("connection refused")

		_, err := newService(&echoLLM{err: modelErr}).Translate(context.Background(), "hallo", "de", "en")

		var te *TranslationError
		require.ErrorAs(t, err, &te)
		assert.ErrorIs(t, err, modelErr)
	})

	t.Run("Empty answer", func(t *testing.T) {
		_, err := newService(&echoLLM{answer: "  "}).Translate(context.Background(), "hallo", "de", "en")

		var te *TranslationError
		assert.ErrorAs(t, err, &te)
	})
}
