package firewall

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/nftables/expr"

	"lampwright/internal/config"
)

func TestFromInstallConfig_PortSet(t *testing.T) {
	install := config.Default()
	install.HTTPPort = 8080
	install.HTTPSPort = 8443
	install.SSHPort = 22
	install.AdditionalPorts = []int{9000, 8080, 0, 70000}

	cfg := FromInstallConfig(install)

	want := []uint16{22, 8080, 8443, 9000}
	if diff := cmp.Diff(want, cfg.AllowedTCPPorts); diff != "" {
		t.Fatalf("port set mismatch (-want +got):\n%s", diff)
	}
}

func TestFromInstallConfig_HTTPSDisabled(t *testing.T) {
	install := config.Default()
	install.EnableHTTPS = false

	cfg := FromInstallConfig(install)

	for _, port := range cfg.AllowedTCPPorts {
		if port == uint16(install.HTTPSPort) {
			t.Fatalf("HTTPS port %d must not be open when HTTPS is disabled", port)
		}
	}
}

func TestIfname_FixedWidth(t *testing.T) {
	b := ifname("lo")
	if len(b) != 16 {
		t.Fatalf("interface names must be 16 bytes, got %d", len(b))
	}
	if !bytes.HasPrefix(b, []byte("lo\x00")) {
		t.Fatalf("unexpected encoding: %v", b)
	}
}

func TestTCPPortAcceptExprs(t *testing.T) {
	exprs := tcpPortAcceptExprs(8443)

	payload, ok := exprs[2].(*expr.Payload)
	if !ok {
		t.Fatalf("expected payload load at index 2, got %T", exprs[2])
	}
	if payload.Offset != 2 || payload.Len != 2 {
		t.Fatalf("expected destination port load, got offset=%d len=%d", payload.Offset, payload.Len)
	}

	portCmp, ok := exprs[3].(*expr.Cmp)
	if !ok {
		t.Fatalf("expected comparison at index 3, got %T", exprs[3])
	}
	// 8443 big-endian.
	if !bytes.Equal(portCmp.Data, []byte{0x20, 0xfb}) {
		t.Fatalf("unexpected port encoding: %v", portCmp.Data)
	}

	verdict, ok := exprs[len(exprs)-1].(*expr.Verdict)
	if !ok || verdict.Kind != expr.VerdictAccept {
		t.Fatalf("rule must end with accept, got %v", exprs[len(exprs)-1])
	}
}

func TestInvalidDropEndsWithDrop(t *testing.T) {
	exprs := invalidDropExprs()
	verdict, ok := exprs[len(exprs)-1].(*expr.Verdict)
	if !ok || verdict.Kind != expr.VerdictDrop {
		t.Fatalf("invalid-state rule must drop, got %v", exprs[len(exprs)-1])
	}
}

func TestEstablishedAcceptMatchesTrackedStates(t *testing.T) {
	exprs := establishedAcceptExprs()

	bitwise, ok := exprs[1].(*expr.Bitwise)
	if !ok {
		t.Fatalf("expected bitwise mask at index 1, got %T", exprs[1])
	}

	var mask uint32
	for i, b := range bitwise.Mask {
		mask |= uint32(b) << (8 * i)
	}
	want := expr.CtStateBitESTABLISHED | expr.CtStateBitRELATED
	if mask != want {
		t.Fatalf("state mask = %#x, want %#x", mask, want)
	}
}
