package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrDuplicateEmail indica violação de unicidade do e-mail.
	ErrDuplicateEmail = errors.New("e-mail já cadastrado")
)
