package adapter_test

import (
	"context"
	"io"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/thebardchat/angel-cloud/pkg/adapter"
)

func TestFileArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	archive := adapter.NewFileArchive(t.TempDir())

	w, err := archive.Put(ctx, "transcripts/session_ab12cd34.json")
	gt.NoError(t, err)
	_, err = w.Write([]byte(`{"session_id":"session_ab12cd34"}`))
	gt.NoError(t, err)
	gt.NoError(t, w.Close())

	r, err := archive.Get(ctx, "transcripts/session_ab12cd34.json")
	gt.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	gt.NoError(t, err)
	gt.S(t, string(data)).Contains("session_ab12cd34")
}

func TestFileArchiveGetMissing(t *testing.T) {
	ctx := context.Background()
	archive := adapter.NewFileArchive(t.TempDir())

	_, err := archive.Get(ctx, "no-such-key.json")
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("failed to read from archive")
}
