package extraction

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/csfacts/internal/config"
)

// watchUntil runs a watcher over root and calls touch until a batch
// containing want arrives.
func watchUntil(t *testing.T, root string, touch func(), want string) Batch {
	t.Helper()
	w, err := NewWatcher(NewDiscoverer(config.Default(root)), 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan Batch, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, b Batch) {
			select {
			case batches <- b:
			default:
			}
		})
	}()
	defer func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	}()

	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	timeout := time.After(10 * time.Second)
	for {
		select {
		case b := <-batches:
			if _, ok := b[want]; ok {
				return b
			}
		case <-tick.C:
			touch()
		case <-timeout:
			t.Fatalf("no batch for %s", want)
			return nil
		}
	}
}

func TestWatcherReportsSourceChanges(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "Order.cs")
	i := 0
	b := watchUntil(t, root, func() {
		i++
		require.NoError(t, os.WriteFile(target, []byte("class Order { int v"+string(rune('0'+i%10))+"; }"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	}, target)

	assert.Contains(t, []FileEventType{FileEventCreate, FileEventWrite}, b[target])
	_, ok := b[filepath.Join(root, "notes.txt")]
	assert.False(t, ok)
	assert.Contains(t, b.Paths(), target)
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "src", "Billing")
	target := filepath.Join(dir, "Invoice.vb")
	watchUntil(t, root, func() {
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(target, []byte("Class Invoice\nEnd Class\n"), 0o644))
	}, target)
}

func TestWatcherIgnoresExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "obj"), 0o755))
	excluded := filepath.Join(root, "obj", "Temp.cs")
	target := filepath.Join(root, "A.cs")
	b := watchUntil(t, root, func() {
		require.NoError(t, os.WriteFile(excluded, []byte("class Temp { }"), 0o644))
		require.NoError(t, os.WriteFile(target, []byte("class A { }"), 0o644))
	}, target)
	_, ok := b[excluded]
	assert.False(t, ok)
}

func TestBatchPathsSorted(t *testing.T) {
	b := Batch{"b.cs": FileEventWrite, "a.cs": FileEventRemove, "c.vb": FileEventCreate}
	assert.Equal(t, []string{"a.cs", "b.cs", "c.vb"}, b.Paths())
	assert.Equal(t, "remove", b["a.cs"].String())
	assert.Equal(t, "rename", FileEventRename.String())
}
