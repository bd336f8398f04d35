package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/moteur/internal/catalog"
	"github.com/MrSnakeDoc/moteur/internal/logger"
)

const testCatalog = `
image_url: https://picsum.photos/400/300
min_results: 2
max_results: 3
sources:
  - name: Avito.ma
    badge: {background: bg-green-100, text: text-green-800, border: border-green-200}
  - name: Voiture.ma
    badge: {background: bg-yellow-100, text: text-yellow-800, border: border-yellow-200}
cities: [الرباط]
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return path
}

func TestCatalogReloader_Reload(t *testing.T) {
	path := writeCatalog(t, testCatalog)
	holder := catalog.NewHolder(catalog.Default())

	cr := NewCatalogReloader(catalog.NewLoader(path), holder, logger.NewNop(), 0, nil)
	if err := cr.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if got := len(holder.Get().Sources); got != 2 {
		t.Errorf("Expected 2 sources after reload, got %d", got)
	}
}

func TestCatalogReloader_KeepsPreviousOnError(t *testing.T) {
	path := writeCatalog(t, testCatalog)
	holder := catalog.NewHolder(catalog.Default())
	cr := NewCatalogReloader(catalog.NewLoader(path), holder, logger.NewNop(), 0, nil)

	if err := cr.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	before := holder.Get()

	if err := os.WriteFile(path, []byte("min_results: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := cr.Reload(); err == nil {
		t.Fatal("Expected reload of a broken file to fail")
	}
	if holder.Get() != before {
		t.Error("Broken reload replaced the active catalog")
	}
}

func TestCatalogReloader_StartFailsOnMissingFile(t *testing.T) {
	holder := catalog.NewHolder(catalog.Default())
	cr := NewCatalogReloader(catalog.NewLoader(filepath.Join(t.TempDir(), "missing.yaml")), holder, logger.NewNop(), 0, nil)

	if err := cr.Start(context.Background()); err == nil {
		t.Error("Expected Start to fail when the catalog file is missing")
	}
}

func TestCatalogReloader_ManualTrigger(t *testing.T) {
	path := writeCatalog(t, testCatalog)
	holder := catalog.NewHolder(catalog.Default())
	trigger := make(chan struct{}, 1)

	cr := NewCatalogReloader(catalog.NewLoader(path), holder, logger.NewNop(), 0, trigger)
	if err := cr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer cr.Stop()

	first := holder.LastReload()
	time.Sleep(2 * time.Millisecond)
	trigger <- struct{}{}

	deadline := time.Now().Add(time.Second)
	for !holder.LastReload().After(first) {
		if time.Now().After(deadline) {
			t.Fatal("Manual trigger did not reload the catalog")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
