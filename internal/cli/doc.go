// Package cli implements the interactive LoanKeeper shell: a small
// REPL over the auth, lender, loan and reporting services. Input
// helpers carry test seams so commands can be driven from scripts.
package cli
