package main

type Move struct {
	Index int `json:"index"`
}

func (m Move) IsValid(cells int) bool {
	return m.Index >= 0 && m.Index < cells
}
