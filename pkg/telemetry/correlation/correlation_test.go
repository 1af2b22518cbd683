package correlation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureCorrelationIDKeepsExisting(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "cid-1")
	_, cid := EnsureCorrelationID(ctx)
	assert.Equal(t, "cid-1", cid)

	_, generated := EnsureCorrelationID(context.Background())
	assert.Len(t, generated, 26)
}

func TestMetadataWithRemoteSpan(t *testing.T) {
	ctx := ContextWithRemoteSpan(context.Background(),
		"4bf92f3577b34da6a3ce929d0e0e4736", "00f067aa0ba902b7")

	md := Metadata(ctx)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", md["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", md["span_id"])
	assert.NotEmpty(t, md["correlation_id"])

	md = Metadata(ContextWithRemoteSpan(context.Background(), "zz", "00f067aa0ba902b7"))
	assert.NotContains(t, md, "trace_id")
}
