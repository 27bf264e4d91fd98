package mock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/readlater/internal/speech"
)

var _ speech.Engine = (*Engine)(nil)

func TestManualLifecycle(t *testing.T) {
	e := New(Manual)
	events, err := e.Speak(speech.Utterance{Text: "hello"})
	require.NoError(t, err)
	assert.False(t, e.Speaking())

	require.True(t, e.Start(0))
	assert.Equal(t, speech.EventStarted, (<-events).Type)
	assert.True(t, e.Speaking())

	require.True(t, e.End(0))
	assert.Equal(t, speech.EventEnded, (<-events).Type)
	_, open := <-events
	assert.False(t, open)
	assert.False(t, e.Speaking())

	assert.False(t, e.End(0), "closed requests ignore further events")
}

func TestCancelInterruptsCurrent(t *testing.T) {
	e := New(Manual)
	events, _ := e.Speak(speech.Utterance{Text: "a"})
	e.Start(0)
	<-events

	e.Cancel()
	ev := <-events
	assert.Equal(t, speech.EventError, ev.Type)
	assert.Equal(t, speech.KindInterrupted, ev.Kind)
	assert.Equal(t, 1, e.Cancels())

	e.Cancel()
	assert.Equal(t, 2, e.Cancels())
}

func TestFailNextSpeak(t *testing.T) {
	e := New(Manual)
	e.FailNextSpeak(errors.New("no engine"))

	_, err := e.Speak(speech.Utterance{Text: "a"})
	assert.Error(t, err)
	_, err = e.Speak(speech.Utterance{Text: "a"})
	assert.NoError(t, err)
	assert.Len(t, e.Requests(), 1)
}

func TestAutoModeRunsToCompletion(t *testing.T) {
	e := New(Auto)
	e.StartDelay = time.Millisecond

	events, err := e.Speak(speech.Utterance{Text: "one two", Rate: 2})
	require.NoError(t, err)

	var got []speech.EventType
	for ev := range events {
		got = append(got, ev.Type)
	}
	assert.Equal(t, []speech.EventType{speech.EventStarted, speech.EventEnded}, got)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, time.Minute, Duration(speech.Utterance{Text: repeatWords(WordsPerMinute)}))
	assert.Equal(t, 30*time.Second, Duration(speech.Utterance{Text: repeatWords(WordsPerMinute), Rate: 2}))
	assert.Positive(t, Duration(speech.Utterance{Text: "日本語の文章を読み上げます"}))
}

func TestVoicesChanged(t *testing.T) {
	e := New(Manual)
	assert.Empty(t, e.Voices())

	e.SetVoices(speech.Voice{ID: "ja", Lang: "ja-JP"})
	select {
	case <-e.VoicesChanged():
	default:
		t.Fatal("expected a voices changed signal")
	}
	assert.Len(t, e.Voices(), 1)
}

func repeatWords(n int) string {
	b := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		b = append(b, 'w', ' ')
	}
	return string(b)
}
