package model

import "testing"

func TestTierFor(t *testing.T) {
	cases := []struct {
		poolID uint64
		want   Tier
	}{
		{1, TierGold},
		{5, TierGold},
		{2, TierSilver},
		{3, TierSilver},
		{4, TierSilver},
		{6, TierSilver},
		{0, TierBronze},
		{7, TierBronze},
		{100, TierBronze},
	}

	for _, c := range cases {
		if got := TierFor(c.poolID); got != c.want {
			t.Fatalf("TierFor(%d) = %s, want %s", c.poolID, got, c.want)
		}
	}
}

func TestFormatLockup(t *testing.T) {
	cases := []struct {
		seconds uint64
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{3600, "1h"},
		{7200, "2h"},
		{86399, "23h"},
		{86400, "1d"},
		{30 * 86400, "30d"},
	}

	for _, c := range cases {
		if got := FormatLockup(c.seconds); got != c.want {
			t.Fatalf("FormatLockup(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}
