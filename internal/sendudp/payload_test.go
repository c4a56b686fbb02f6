package sendudp_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opensciencegrid/xrootd-monitoring-shoveler/internal/sendudp"
	"github.com/opensciencegrid/xrootd-monitoring-shoveler/pkg/xrdmon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendudp_Spec_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		spec      sendudp.Spec
		expectErr bool
	}{
		{
			name: "fixed payload",
			spec: sendudp.Spec{Text: "testmessage", Count: 10},
		},
		{
			name: "counter payload",
			spec: sendudp.Spec{Text: "testmessage", AppendCounter: true, Count: 100000},
		},
		{
			name: "empty text is allowed",
			spec: sendudp.Spec{Count: 1},
		},
		{
			name:      "zero count",
			spec:      sendudp.Spec{Text: "x"},
			expectErr: true,
		},
		{
			name:      "negative count",
			spec:      sendudp.Spec{Text: "x", Count: -1},
			expectErr: true,
		},
		{
			name: "text at the payload limit",
			spec: sendudp.Spec{Text: strings.Repeat("a", xrdmon.MaxPayloadSize), Count: 1},
		},
		{
			name:      "text over the payload limit",
			spec:      sendudp.Spec{Text: strings.Repeat("a", xrdmon.MaxPayloadSize+1), Count: 1},
			expectErr: true,
		},
		{
			name: "counter digits push text over the limit",
			spec: sendudp.Spec{
				Text:          strings.Repeat("a", xrdmon.MaxPayloadSize-2),
				AppendCounter: true,
				Count:         1000,
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSendudp_Source_Fixed(t *testing.T) {
	t.Parallel()

	src := sendudp.Spec{Text: "testmessage", Count: 10}.Source()
	require.Equal(t, 10, src.Len())

	for i := 0; i < 10; i++ {
		payload, ok := src.Next()
		require.True(t, ok, "payload %d", i)
		require.Equal(t, []byte("testmessage"), payload)
	}
	_, ok := src.Next()
	require.False(t, ok)

	// Restartable: Reset rewinds to the full sequence.
	src.Reset()
	n := 0
	for {
		if _, ok := src.Next(); !ok {
			break
		}
		n++
	}
	require.Equal(t, 10, n)
}

func TestSendudp_Source_Counter(t *testing.T) {
	t.Parallel()

	src := sendudp.Spec{Text: "testmessage", AppendCounter: true, Count: 5}.Source()

	var got []string
	for {
		payload, ok := src.Next()
		if !ok {
			break
		}
		got = append(got, string(payload))
	}

	want := []string{"testmessage0", "testmessage1", "testmessage2", "testmessage3", "testmessage4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload sequence mismatch (-want +got):\n%s", diff)
	}

	src.Reset()
	payload, ok := src.Next()
	require.True(t, ok)
	require.Equal(t, "testmessage0", string(payload))
}

// TestSendudp_Source_FullVolume walks the original high-volume sequence:
// 100000 payloads, each distinct, "testmessage0" through "testmessage99999".
func TestSendudp_Source_FullVolume(t *testing.T) {
	t.Parallel()

	const count = 100000
	src := sendudp.Spec{Text: "testmessage", AppendCounter: true, Count: count}.Source()
	require.Equal(t, count, src.Len())

	seen := make(map[string]struct{}, count)
	i := 0
	for {
		payload, ok := src.Next()
		if !ok {
			break
		}
		want := "testmessage" + strconv.Itoa(i)
		require.Equal(t, want, string(payload), "payload %d", i)
		seen[string(payload)] = struct{}{}
		i++
	}
	require.Equal(t, count, i)
	require.Len(t, seen, count, "payloads must be distinct")
}
