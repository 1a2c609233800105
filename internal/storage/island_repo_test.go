package storage

import (
	"context"
	"testing"

	"github.com/annel0/cauldron-witchery/internal/config"
	"github.com/annel0/cauldron-witchery/internal/island"
	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/google/uuid"
)

func newIslandView(x int) island.View {
	is := island.New("bskyblock_world", vec.Vec3{X: x, Y: 64, Z: 0}, 50, uuid.New())
	is.SetFlag("CAULDRON_WITCHERY_ISLAND_PROTECTION", island.RankTrusted)
	return is.View()
}

// testIslandRepo прогоняет общий набор проверок для любой реализации IslandRepo
func testIslandRepo(t *testing.T, repo IslandRepo) {
	ctx := context.Background()

	t.Run("Save and LoadAll", func(t *testing.T) {
		v := newIslandView(0)
		if err := repo.Save(ctx, v); err != nil {
			t.Fatalf("Ошибка сохранения острова: %v", err)
		}

		views, err := repo.LoadAll(ctx)
		if err != nil {
			t.Fatalf("Ошибка загрузки островов: %v", err)
		}
		if len(views) != 1 {
			t.Fatalf("Ожидался 1 остров, получено %d", len(views))
		}
		if views[0].ID != v.ID || views[0].Owner != v.Owner {
			t.Errorf("Неверный остров: ожидался %+v, получен %+v", v, views[0])
		}
		if views[0].Flags["CAULDRON_WITCHERY_ISLAND_PROTECTION"] != island.RankTrusted {
			t.Errorf("Флаг не сохранён: %+v", views[0].Flags)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		views, _ := repo.LoadAll(ctx)
		v := views[0]
		v.ProtectionRange = 10
		if err := repo.Save(ctx, v); err != nil {
			t.Fatalf("Ошибка перезаписи: %v", err)
		}

		views, err := repo.LoadAll(ctx)
		if err != nil {
			t.Fatalf("Ошибка загрузки: %v", err)
		}
		if len(views) != 1 || views[0].ProtectionRange != 10 {
			t.Errorf("Остров не перезаписан: %+v", views)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		views, _ := repo.LoadAll(ctx)
		if err := repo.Delete(ctx, views[0].ID); err != nil {
			t.Fatalf("Ошибка удаления: %v", err)
		}
		views, err := repo.LoadAll(ctx)
		if err != nil {
			t.Fatalf("Ошибка загрузки после удаления: %v", err)
		}
		if len(views) != 0 {
			t.Errorf("Остров найден после удаления: %+v", views)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		if err := repo.Save(ctx, island.View{}); err != ErrEmptyID {
			t.Errorf("Ожидалась ErrEmptyID, получено %v", err)
		}
		if err := repo.Delete(ctx, ""); err != ErrEmptyID {
			t.Errorf("Ожидалась ErrEmptyID, получено %v", err)
		}
	})
}

func TestMemoryIslandRepo(t *testing.T) {
	repo := NewMemoryIslandRepo()
	defer repo.Close()
	testIslandRepo(t, repo)
}

func TestBadgerIslandRepo(t *testing.T) {
	repo, err := NewBadgerIslandRepo("")
	if err != nil {
		t.Fatalf("Ошибка открытия BadgerDB: %v", err)
	}
	defer repo.Close()
	testIslandRepo(t, repo)
}

func TestBadgerIslandRepoPersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	v := newIslandView(0)

	repo, err := NewBadgerIslandRepo(dir)
	if err != nil {
		t.Fatalf("Ошибка открытия BadgerDB: %v", err)
	}
	if err := repo.Save(ctx, v); err != nil {
		t.Fatalf("Ошибка сохранения: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Ошибка закрытия: %v", err)
	}
	if err := repo.Save(ctx, v); err == nil {
		t.Error("Сохранение в закрытое хранилище должно возвращать ошибку")
	}

	reopened, err := NewBadgerIslandRepo(dir)
	if err != nil {
		t.Fatalf("Ошибка повторного открытия: %v", err)
	}
	defer reopened.Close()

	views, err := reopened.LoadAll(ctx)
	if err != nil {
		t.Fatalf("Ошибка загрузки: %v", err)
	}
	if len(views) != 1 || views[0].ID != v.ID {
		t.Errorf("Остров не сохранился между запусками: %+v", views)
	}
}

func TestRestoreSkipsOverlapping(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIslandRepo()

	first := newIslandView(0)
	overlapping := newIslandView(10)
	far := newIslandView(1000)
	for _, v := range []island.View{first, overlapping, far} {
		if err := repo.Save(ctx, v); err != nil {
			t.Fatalf("Ошибка сохранения: %v", err)
		}
	}
	if err := repo.Save(ctx, island.View{ID: "broken"}); err != nil {
		t.Fatalf("Ошибка сохранения: %v", err)
	}

	mgr := island.NewManager()
	n, err := Restore(ctx, repo, mgr)
	if err != nil {
		t.Fatalf("Ошибка восстановления: %v", err)
	}
	if n != 2 || mgr.Count() != 2 {
		t.Errorf("Ожидалось 2 острова, восстановлено %d (в реестре %d)", n, mgr.Count())
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	repo, err := Open(config.StorageConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("Ошибка открытия: %v", err)
	}
	if _, ok := repo.(*MemoryIslandRepo); !ok {
		t.Errorf("Ожидался MemoryIslandRepo, получен %T", repo)
	}

	repo, err = Open(config.StorageConfig{Backend: "badger"})
	if err != nil {
		t.Fatalf("Ошибка открытия BadgerDB: %v", err)
	}
	defer repo.Close()
	if _, ok := repo.(*BadgerIslandRepo); !ok {
		t.Errorf("Ожидался BadgerIslandRepo, получен %T", repo)
	}

	if _, err := Open(config.StorageConfig{Backend: "floppy"}); err == nil {
		t.Error("Неизвестный backend должен возвращать ошибку")
	}
}
