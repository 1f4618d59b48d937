package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthWithoutBackends(t *testing.T) {
	m := NewHealthMonitor(nil, nil)
	status := m.Check(context.Background())

	assert.Nil(t, status.Mongo)
	assert.Nil(t, status.Redis)
	assert.True(t, status.Healthy())
	assert.Equal(t, status, m.Status())
}

func TestHealthy(t *testing.T) {
	up, down := true, false
	assert.True(t, HealthStatus{Mongo: &up, Redis: &up}.Healthy())
	assert.False(t, HealthStatus{Mongo: &up, Redis: &down}.Healthy())
	assert.False(t, HealthStatus{Mongo: &down}.Healthy())
}
