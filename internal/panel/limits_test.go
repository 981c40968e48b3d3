package panel

import "testing"

func TestResolvePercent(t *testing.T) {
	pair := ResolvePercent("12.35%", 50)
	if pair.Text() != "12.35% / 50%" {
		t.Fatalf("expected '12.35%% / 50%%', got %q", pair.Text())
	}

	// Zero means no limit configured, never a limit of zero.
	pair = ResolvePercent("12.35%", 0)
	if pair.Limit != Unlimited {
		t.Fatalf("expected unlimited sentinel for zero limit, got %q", pair.Limit)
	}
	if pair.Text() != "12.35% / "+Unlimited {
		t.Fatalf("unexpected unlimited text: %q", pair.Text())
	}
}

func TestResolveMebibytes(t *testing.T) {
	pair := ResolveMebibytes("1.00 MiB", 512)
	if pair.Limit != "512.00 MiB" {
		t.Fatalf("expected 512 MiB limit to render as '512.00 MiB', got %q", pair.Limit)
	}
	if pair := ResolveMebibytes("1.00 MiB", 0); pair.Limit != Unlimited {
		t.Fatalf("expected unlimited sentinel for absent limit, got %q", pair.Limit)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	first := ResolvePercent("45.00%", 100)
	second := ResolvePercent("45.00%", 100)
	if first != second {
		t.Fatalf("resolving the same pair twice diverged: %+v vs %+v", first, second)
	}
}

func TestDescribe(t *testing.T) {
	limited := Describe("CPU", DisplayPair{Current: "1.00%", Limit: "50%"})
	if limited != "This server is allowed to use up to 50% of CPU." {
		t.Fatalf("unexpected limited description: %q", limited)
	}
	unlimited := Describe("memory", DisplayPair{Current: "1.00 MiB", Limit: Unlimited})
	if unlimited != "No memory limit has been configured." {
		t.Fatalf("unexpected unlimited description: %q", unlimited)
	}
}
