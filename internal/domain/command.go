package domain

// CommandType classifies what the operator typed.
type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandHelp
	CommandQuit
	CommandRegister
	CommandLogin
	CommandLogout
	CommandStock
	CommandMenu
	CommandBudget
	CommandBuy     // admin: new ingredient purchase
	CommandRestock // admin: increase an existing ingredient
	CommandDish    // admin: create a dish
	CommandAdd     // customer: add dish to cart
	CommandRemove
	CommandCart
	CommandModify
	CommandConfirm
	CommandHistory
	CommandInfo
)

var commandNames = map[CommandType]string{
	CommandHelp:     "help",
	CommandQuit:     "quit",
	CommandRegister: "register",
	CommandLogin:    "login",
	CommandLogout:   "logout",
	CommandStock:    "stock",
	CommandMenu:     "menu",
	CommandBudget:   "budget",
	CommandBuy:      "buy",
	CommandRestock:  "restock",
	CommandDish:     "dish",
	CommandAdd:      "add",
	CommandRemove:   "remove",
	CommandCart:     "cart",
	CommandModify:   "modify",
	CommandConfirm:  "confirm",
	CommandHistory:  "history",
	CommandInfo:     "info",
}

// String returns the command keyword.
func (c CommandType) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Command is a parsed operator action. Args are already split into the
// fields the command expects.
type Command struct {
	Type CommandType
	Args []string
	Raw  string
}
