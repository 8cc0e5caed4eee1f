// Package engine implements win detection and bot move selection for Caro
// (Gomoku on any square board) and Tic-Tac-Toe.
package engine
