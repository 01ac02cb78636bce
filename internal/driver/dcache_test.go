package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"mend/internal/diag"
	"mend/internal/project"
	"mend/internal/source"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := project.HashString("content")

	if hit, err := cache.Balanced(key); hit || err != nil {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}
	cache.MarkBalanced(key, "a.js")

	var got DiskPayload
	ok, err := cache.Get(key, &got)
	if !ok || err != nil {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if got.Path != "a.js" || !got.Balanced || got.Schema != diskCacheSchemaVersion {
		t.Fatalf("payload = %+v", got)
	}
	if hit, _ := cache.Balanced(project.HashString("other")); hit {
		t.Fatal("unrelated key hit")
	}
}

func TestDiskCacheSchemaMismatch(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := project.HashString("content")
	cache.MarkBalanced(key, "a.js")

	// перезаписываем запись старой схемой
	data, err := msgpack.Marshal(&DiskPayload{Schema: diskCacheSchemaVersion + 1, Balanced: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cache.pathFor(key), data, 0o600); err != nil {
		t.Fatal(err)
	}
	if hit, err := cache.Balanced(key); hit || err != nil {
		t.Fatalf("stale schema: hit=%v err=%v", hit, err)
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := project.HashString("content")
	cache.MarkBalanced(key, "a.js")
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if hit, _ := cache.Balanced(key); hit {
		t.Fatal("record survived DropAll")
	}
	if _, err := os.Stat(cache.Dir()); err != nil {
		t.Fatalf("cache dir not recreated: %v", err)
	}

	var nilCache *DiskCache
	if err := nilCache.DropAll(); err != nil {
		t.Fatal(err)
	}
}

func TestRepairFileCorruptCacheRecord(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.js", fixedSrc, 0o644)
	cache, err := OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Cache = cache
	opts.normalize()

	file, err := source.Load(p)
	if err != nil {
		t.Fatal(err)
	}
	key := opts.cacheKey(project.Digest(file.Hash))
	if err := os.MkdirAll(filepath.Dir(cache.pathFor(key)), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cache.pathFor(key), []byte{0xc1, 0xff}, 0o600); err != nil {
		t.Fatal(err)
	}

	rep := RepairFile(context.Background(), p, opts)
	if !rep.Fixed() || rep.Cached || rep.Fatal {
		t.Fatalf("fixed=%v cached=%v fatal=%v", rep.Fixed(), rep.Cached, rep.Fatal)
	}
	if !hasCode(rep.Diagnostics, diag.IOCacheReadError) {
		t.Fatalf("missing %s in %v", diag.IOCacheReadError.ID(), rep.Diagnostics)
	}
	if hit, err := cache.Balanced(key); !hit || err != nil {
		t.Fatalf("record not rewritten: hit=%v err=%v", hit, err)
	}
}
