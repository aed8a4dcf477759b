package main

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EntityID é um identificador recebido no corpo das requisições.
// Aceita tanto string quanto número JSON ({"productId": 5} ou {"productId": "5"}).
type EntityID string

func (id *EntityID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EntityID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = EntityID(n.String())
	return nil
}

// String devolve o identificador sem espaços nas bordas
func (id EntityID) String() string {
	return strings.TrimSpace(string(id))
}
