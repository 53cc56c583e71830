package campaign

import (
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestDeriveSemDatasProduzZero(t *testing.T) {
	view := Derive(Campaign{Status: StatusPending}, time.Now())

	if view.Progress != 0 || view.IsActive || view.IsExpired {
		t.Fatalf("campanha sem datas deve ser inerte, obtido %+v", view)
	}
}

func TestDeriveMeioDaCampanha(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)
	now := start.AddDate(0, 0, 15)

	view := Derive(Campaign{
		Status:    StatusActive,
		StartedAt: timePtr(start),
		EndedAt:   timePtr(end),
	}, now)

	if view.Progress != 50 {
		t.Fatalf("progresso esperado 50, obtido %d", view.Progress)
	}
	if !view.IsActive {
		t.Fatal("campanha na metade do prazo deve estar ativa")
	}
	if view.IsExpired {
		t.Fatal("campanha na metade do prazo não está expirada")
	}
	if view.DaysRemaining != 15 {
		t.Fatalf("dias restantes esperados 15, obtido %d", view.DaysRemaining)
	}
	if view.HoursRemaining != 15*24 {
		t.Fatalf("horas restantes esperadas %d, obtido %d", 15*24, view.HoursRemaining)
	}
}

func TestDeriveAntesDoInicioTravaEmZero(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)
	now := start.AddDate(0, 0, -5)

	view := Derive(Campaign{Status: StatusActive, StartedAt: timePtr(start), EndedAt: timePtr(end)}, now)

	if view.Progress != 0 {
		t.Fatalf("progresso antes do início deve ser 0, obtido %d", view.Progress)
	}
}

func TestDeriveAposFimTravaEmCem(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)
	now := end.AddDate(0, 0, 10)

	view := Derive(Campaign{Status: StatusActive, StartedAt: timePtr(start), EndedAt: timePtr(end)}, now)

	if view.Progress != 100 {
		t.Fatalf("progresso após o fim deve ser 100, obtido %d", view.Progress)
	}
	if !view.IsExpired {
		t.Fatal("campanha vencida deve constar como expirada")
	}
	if view.IsActive {
		t.Fatal("campanha vencida não pode constar como ativa")
	}
	if view.DaysRemaining != 0 || view.HoursRemaining != 0 {
		t.Fatalf("restante após o fim deve ser zero, obtido %d dias / %d horas",
			view.DaysRemaining, view.HoursRemaining)
	}
}

func TestDeriveProgressoMonotonico(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)
	c := Campaign{Status: StatusActive, StartedAt: timePtr(start), EndedAt: timePtr(end)}

	previous := -1
	for day := 0; day <= 35; day++ {
		view := Derive(c, start.AddDate(0, 0, day))
		if view.Progress < previous {
			t.Fatalf("progresso regrediu no dia %d: %d < %d", day, view.Progress, previous)
		}
		previous = view.Progress
	}
}

func TestDeriveStatusNaoAtivoNuncaEhAtivo(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)
	now := start.AddDate(0, 0, 5)

	for _, status := range []Status{StatusPending, StatusPaused, StatusCompleted, StatusCancelled} {
		view := Derive(Campaign{Status: status, StartedAt: timePtr(start), EndedAt: timePtr(end)}, now)
		if view.IsActive {
			t.Fatalf("status %q dentro do prazo não pode derivar is_active", status)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusPending:   false,
		StatusActive:    false,
		StatusPaused:    false,
		StatusCompleted: true,
		StatusCancelled: true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Fatalf("status %q: terminal esperado %v, obtido %v", status, want, got)
		}
	}
}
