package domain

// MessageTypeGroup holds the transactions of one message type in hit order.
type MessageTypeGroup struct {
	Key          string        `json:"key"`
	Transactions []Transaction `json:"transactions"`
}

// CategorizedTransactions maps message type to transactions while keeping
// the order in which the keys were first inserted.
type CategorizedTransactions struct {
	groups []MessageTypeGroup
	index  map[string]int
}

func NewCategorizedTransactions(capacity int) *CategorizedTransactions {
	return &CategorizedTransactions{
		groups: make([]MessageTypeGroup, 0, capacity),
		index:  make(map[string]int, capacity),
	}
}

// Set assigns the transactions for key. An existing key keeps its position.
func (c *CategorizedTransactions) Set(key string, transactions []Transaction) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if pos, ok := c.index[key]; ok {
		c.groups[pos].Transactions = transactions
		return
	}
	c.index[key] = len(c.groups)
	c.groups = append(c.groups, MessageTypeGroup{Key: key, Transactions: transactions})
}

func (c *CategorizedTransactions) Get(key string) ([]Transaction, bool) {
	if c == nil {
		return nil, false
	}
	pos, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.groups[pos].Transactions, true
}

func (c *CategorizedTransactions) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.groups))
	for _, group := range c.groups {
		keys = append(keys, group.Key)
	}
	return keys
}

// Groups returns the groups in insertion order. Callers must not mutate them.
func (c *CategorizedTransactions) Groups() []MessageTypeGroup {
	if c == nil {
		return nil
	}
	return c.groups
}

func (c *CategorizedTransactions) Len() int {
	if c == nil {
		return 0
	}
	return len(c.groups)
}

// TransactionCount is the number of transactions across all groups.
func (c *CategorizedTransactions) TransactionCount() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, group := range c.groups {
		total += len(group.Transactions)
	}
	return total
}
