package test

import (
	"testing"
	"time"

	"dispatchrpc/client"
	"dispatchrpc/codec"
	"dispatchrpc/server"
)

func setupBenchServerAndClient(b *testing.B, addr string) (*server.Server, *client.Client) {
	b.Helper()
	s := server.NewServer()
	s.Register("Arith.Add", func(in addArgs) (int, error) { return in.A + in.B, nil })

	go func() { s.Start(addr) }()
	deadline := time.Now().Add(2 * time.Second)
	for s.Addr() == nil {
		if time.Now().After(deadline) {
			b.Fatal("server never bound a listener")
		}
		time.Sleep(5 * time.Millisecond)
	}

	c, err := client.Connect(s.Addr().String())
	if err != nil {
		b.Fatal(err)
	}
	return s, c
}

func BenchmarkSerialCall(b *testing.B) {
	s, c := setupBenchServerAndClient(b, "127.0.0.1:0")
	b.Cleanup(func() { c.Close(); s.Shutdown(3 * time.Second) })

	args := addArgs{A: 1, B: 2}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := client.Call[int](c, "Arith.Add", args); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConcurrentCall(b *testing.B) {
	s, c := setupBenchServerAndClient(b, "127.0.0.1:0")
	b.Cleanup(func() { c.Close(); s.Shutdown(3 * time.Second) })

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		args := addArgs{A: 1, B: 2}
		for pb.Next() {
			if _, err := client.Call[int](c, "Arith.Add", args); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

func BenchmarkCodecJSON(b *testing.B) {
	cdc := codec.Get(codec.TypeJSON)
	payload := addArgs{A: 1, B: 2}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data, _ := cdc.Encode(payload)
		var out addArgs
		cdc.Decode(data, &out)
	}
}

func BenchmarkCodecCompact(b *testing.B) {
	cdc := codec.Get(codec.TypeCompact)
	payload := addArgs{A: 1, B: 2}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data, _ := cdc.Encode(payload)
		var out addArgs
		cdc.Decode(data, &out)
	}
}
