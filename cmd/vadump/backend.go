package main

import (
	"context"
	"fmt"

	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/config"
	"github.com/wippyai/foreign/memory"
)

const wasmPageSize = 64 << 10

type backend struct {
	mem   foreign.Memory
	alloc foreign.Allocator
	close func() error
	name  string
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func openBackend(ctx context.Context, name string, size uint64) (*backend, error) {
	switch name {
	case config.BackendArena:
		a := memory.NewArena(size)
		return &backend{mem: a, alloc: a, close: a.Close, name: name}, nil

	case config.BackendNative:
		a, err := memory.NewNative(size)
		if err != nil {
			return nil, fmt.Errorf("native backend: %w", err)
		}
		return &backend{mem: a, alloc: a, close: a.Close, name: name}, nil

	case config.BackendWasm:
		pages := uint32((size + wasmPageSize - 1) / wasmPageSize)
		lin, err := memory.NewLinear(ctx, pages)
		if err != nil {
			return nil, fmt.Errorf("wasm backend: %w", err)
		}
		return &backend{
			mem:   lin,
			alloc: lin,
			close: func() error { return lin.Close(ctx) },
			name:  name,
		}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}
