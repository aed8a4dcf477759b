package main

import (
	"errors"
	"net/http"
)

// ErrorKind classifica os erros do serviço para o mapeamento HTTP
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindInsufficientStock
	KindConflict
	KindPersistence
)

// StockError é o erro retornado pelos casos de uso
type StockError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *StockError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *StockError) Unwrap() error {
	return e.Err
}

// Is compara pelo tipo, para que errors.Is(err, ErrInsufficientStock) funcione com qualquer mensagem
func (e *StockError) Is(target error) bool {
	t, ok := target.(*StockError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Erros customizados
var (
	ErrInsufficientStock = &StockError{Kind: KindInsufficientStock, Message: "Stock insuffisant pour ce produit."}
	ErrProductNotFound   = &StockError{Kind: KindNotFound, Message: "Produit non trouvé."}
	ErrSupplierNotFound  = &StockError{Kind: KindNotFound, Message: "Fournisseur non trouvé."}
	ErrSupplierInUse     = &StockError{Kind: KindConflict, Message: "Fournisseur référencé par des produits."}
)

func newValidationError(message string) error {
	return &StockError{Kind: KindValidation, Message: message}
}

func newPersistenceError(message string, err error) error {
	return &StockError{Kind: KindPersistence, Message: message, Err: err}
}

// IsKind verifica se err carrega um StockError do tipo informado
func IsKind(err error, kind ErrorKind) bool {
	var se *StockError
	return errors.As(err, &se) && se.Kind == kind
}

// statusForError converte um erro de caso de uso no código HTTP e na mensagem do envelope
func statusForError(err error) (int, string) {
	var se *StockError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError, err.Error()
	}

	switch se.Kind {
	case KindValidation, KindInsufficientStock:
		return http.StatusBadRequest, se.Error()
	case KindNotFound:
		return http.StatusNotFound, se.Error()
	case KindConflict:
		return http.StatusConflict, se.Error()
	default:
		return http.StatusInternalServerError, se.Error()
	}
}
