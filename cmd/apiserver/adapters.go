package main

import (
	"github.com/turtacn/FamilyCare-Analytics/internal/app"
	"github.com/turtacn/FamilyCare-Analytics/internal/interfaces/http/handlers"
)

// healthCheckers adapts the infrastructure pings to the readiness handler.
func healthCheckers(checks []app.HealthCheck) []handlers.HealthChecker {
	out := make([]handlers.HealthChecker, len(checks))
	for i, c := range checks {
		out[i] = handlers.NewCheck(c.Name, c.Check)
	}
	return out
}
