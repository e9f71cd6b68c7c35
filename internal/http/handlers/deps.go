package handlers

import (
	"apiadventures/internal/repos"
	"apiadventures/internal/services"
	"apiadventures/internal/worker"
)

type Deps struct {
	ProductHandler *ProductHandler
	StatusHandler  *StatusHandler
}

// NewDeps wires handlers to process-scoped handles. refresher may be nil when
// no scheduler runs.
func NewDeps(vm *services.ProductsViewModel, products *repos.ProductRepo, refresher *worker.Refresher) *Deps {
	status := &StatusHandler{Cache: products}
	if refresher != nil {
		status.Refresh = refresher
	}
	return &Deps{
		ProductHandler: &ProductHandler{VM: vm},
		StatusHandler:  status,
	}
}
