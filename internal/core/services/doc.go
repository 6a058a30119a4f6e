// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Pipeline runs one batch through the staged topic analysis;
// ResultService reads and exports stored runs.
package services
