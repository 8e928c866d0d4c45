package registry

import "testing"

func TestServesHandlerEmptyListServesEverything(t *testing.T) {
	inst := ServiceInstance{Addr: "127.0.0.1:9000"}
	if !inst.ServesHandler("Arith.Add") {
		t.Fatal("an instance with no Handlers list should serve anything")
	}
}

func TestServesHandlerFiltersToAdvertisedNames(t *testing.T) {
	inst := ServiceInstance{Addr: "127.0.0.1:9000", Handlers: []string{"Arith.Add", "Arith.Multiply"}}

	if !inst.ServesHandler("Arith.Add") {
		t.Fatal("expected Arith.Add to be served")
	}
	if inst.ServesHandler("Arith.Divide") {
		t.Fatal("expected Arith.Divide to be rejected")
	}
}
