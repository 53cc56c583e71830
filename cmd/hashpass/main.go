package main

import (
	"fmt"
	"os"

	"github.com/captei/prospeccao/internal/auth"
)

// Gera hash bcrypt para uso em seeds e correções manuais no banco.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: hashpass <senha>")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
