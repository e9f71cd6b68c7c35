package services

import (
	"context"
	"sync"

	"apiadventures/internal/domain"
	applog "apiadventures/internal/log"
)

// ProductsViewModel drives an OutcomeStore from a Loader. Loads run on their
// own goroutines; their outcomes are applied by the Run loop only.
type ProductsViewModel struct {
	loader  Loader
	store   *OutcomeStore
	results chan domain.Outcome
	done    chan struct{}
	appear  sync.Once
	stop    sync.Once
}

func NewProductsViewModel(loader Loader) *ProductsViewModel {
	return &ProductsViewModel{
		loader:  loader,
		store:   NewOutcomeStore(),
		results: make(chan domain.Outcome),
		done:    make(chan struct{}),
	}
}

func (vm *ProductsViewModel) Store() *OutcomeStore { return vm.store }

func (vm *ProductsViewModel) Outcome() domain.Outcome { return vm.store.Current() }

// Run applies load results to the store until ctx is done. Loads still in
// flight afterwards finish, but their results are dropped.
func (vm *ProductsViewModel) Run(ctx context.Context) {
	defer vm.stop.Do(func() { close(vm.done) })
	for {
		select {
		case o := <-vm.results:
			vm.store.Set(o)
		case <-ctx.Done():
			return
		}
	}
}

// Appear triggers the first load. Later calls do nothing.
func (vm *ProductsViewModel) Appear() {
	vm.appear.Do(vm.Reload)
}

// Reload starts a load. Concurrent loads are not coalesced.
func (vm *ProductsViewModel) Reload() {
	go func() {
		o, err := vm.loader.Load(context.Background())
		if err != nil {
			applog.Error(nil, "products.view.load.fail", err, nil)
			return
		}
		select {
		case vm.results <- o:
		case <-vm.done:
		}
	}()
}
