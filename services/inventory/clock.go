package main

import "time"

// Clock fornece o horário dos registros do ledger (substituível nos testes)
type Clock interface {
	Now() time.Time
}

// RealClock usa o relógio do sistema em UTC
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
