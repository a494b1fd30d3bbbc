package domain

// Transaction is one indexed chain transaction as stored in the search index.
type Transaction struct {
	ID           string   `json:"id"`
	MessageTypes string   `json:"message_types"`
	Success      bool     `json:"success"`
	ChainName    string   `json:"chain_name"`
	Hash         string   `json:"hash"`
	Height       uint64   `json:"height"`
	Memo         string   `json:"memo"`
	Addresses    []string `json:"addresses"`
}
