package pattern

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptics/pkg/errors"
)

func TestRegistry_RegisterLatestWins(t *testing.T) {
	r := NewRegistry()

	first, err := r.Register("buzz", Pattern{Project: json.RawMessage(`{"layout":1}`)})
	require.NoError(t, err)
	second, err := r.Register("buzz", Pattern{Project: json.RawMessage(`{"layout":2}`)})
	require.NoError(t, err)

	assert.JSONEq(t, `{"layout":1}`, string(first.Project))
	assert.JSONEq(t, `{"layout":2}`, string(second.Project))
	assert.Equal(t, "buzz", second.Key)

	current, ok := r.Get("buzz")
	require.True(t, ok)
	assert.JSONEq(t, `{"layout":2}`, string(current.Project))

	history := r.History("buzz")
	require.Len(t, history, 2)
	assert.JSONEq(t, `{"layout":1}`, string(history[0].Project))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("", Pattern{Project: json.RawMessage(`{}`)})
	assert.True(t, errors.IsInvalid(err))
	assert.True(t, errors.Is(err, errors.ErrEmptyKey))

	_, err = r.Register("broken", Pattern{Project: json.RawMessage(`{`)})
	assert.True(t, errors.IsInvalid(err))

	_, err = r.Register("empty", Pattern{})
	assert.True(t, errors.IsInvalid(err))

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.History("broken"))
}

func TestValidate(t *testing.T) {
	project, err := Validate("buzz", Pattern{Project: json.RawMessage("  {\"id\":1}\n")})
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(project))

	_, err = Validate("buzz", Pattern{Project: json.RawMessage(`[`)})
	assert.True(t, errors.IsInvalid(err))
	_, err = Validate("", Pattern{Project: json.RawMessage(`{}`)})
	assert.True(t, errors.Is(err, errors.ErrEmptyKey))
}

func TestRegistry_KeysSorted(t *testing.T) {
	r := NewRegistry()
	for _, key := range []string{"wave", "buzz", "pulse"} {
		_, err := r.Register(key, Pattern{Project: json.RawMessage(`{}`)})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"buzz", "pulse", "wave"}, r.Keys())

	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_HistoryIsCopy(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("buzz", Pattern{Project: json.RawMessage(`{}`)})
	require.NoError(t, err)

	history := r.History("buzz")
	history[0].Key = "changed"

	assert.Equal(t, "buzz", r.History("buzz")[0].Key)
}
