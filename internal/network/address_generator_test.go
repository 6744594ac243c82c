package network

import "testing"

func TestSocketCount_ClampsToBounds(t *testing.T) {
	tests := []struct {
		name              string
		custom, addrCount int
		want              int
	}{
		{"auto from small list", 0, 3, 1},
		{"auto from larger list", 0, 600, 72},
		{"auto typical", 0, 12, 2},
		{"explicit within bounds", 10, 0, 10},
		{"explicit clamped at ceiling", 500, 0, 128},
		{"negative custom falls back to auto", -5, 100, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SocketCount(tt.custom, tt.addrCount)
			if got != tt.want {
				t.Errorf("SocketCount(%d, %d) = %d, want %d", tt.custom, tt.addrCount, got, tt.want)
			}
		})
	}
}

func TestSweepSlash24_CoversFullHostRange(t *testing.T) {
	ip := []byte{192, 168, 1, 64}
	sweep := sweepSlash24(ip)

	if len(sweep) != 254 {
		t.Fatalf("len(sweep) = %d, want 254", len(sweep))
	}
	if sweep[0] != "192.168.1.1" {
		t.Errorf("sweep[0] = %q, want 192.168.1.1", sweep[0])
	}
	if sweep[len(sweep)-1] != "192.168.1.254" {
		t.Errorf("sweep[last] = %q, want 192.168.1.254", sweep[len(sweep)-1])
	}
}

func TestGenerateAddressList_AppendsExtraThenLoopback(t *testing.T) {
	list := GenerateAddressList([]string{"10.0.0.5"})

	if len(list) == 0 {
		t.Fatal("GenerateAddressList returned an empty list")
	}
	if list[len(list)-1] != "127.0.0.1" {
		t.Errorf("last entry = %q, want 127.0.0.1", list[len(list)-1])
	}

	found := false
	for _, addr := range list {
		if addr == "10.0.0.5" {
			found = true
		}
	}
	if !found {
		t.Error("GenerateAddressList did not carry through the caller-supplied address")
	}
}
