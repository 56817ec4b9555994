package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case Signup:
		o.printSignup(v)
	case RegistrationResult:
		o.printRegistrationResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult combines user and token
type AuthResult struct {
	User         User      `json:"user"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Signup is a signup session snapshot
type Signup struct {
	SessionID  string              `json:"session_id"`
	State      string              `json:"state"`
	Strategy   string              `json:"strategy"`
	Username   string              `json:"username"`
	Email      string              `json:"email"`
	Error      string              `json:"error,omitempty"`
	Challenge  *Challenge          `json:"challenge,omitempty"`
	Submitting bool                `json:"submitting"`
	LastResult *RegistrationResult `json:"last_result,omitempty"`
}

// Challenge is the live challenge of a signup session
type Challenge struct {
	Kind         string          `json:"kind"`
	Cards        []ChallengeCard `json:"cards,omitempty"`
	Target       string          `json:"target,omitempty"`
	Acknowledged bool            `json:"acknowledged,omitempty"`
	ReadyAt      *time.Time      `json:"ready_at,omitempty"`
	SiteKey      string          `json:"site_key,omitempty"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// ChallengeCard is one selectable entry of a symbol challenge
type ChallengeCard struct {
	Index    int    `json:"index"`
	Symbol   string `json:"symbol,omitempty"`
	Revealed bool   `json:"revealed,omitempty"`
	Solved   bool   `json:"solved,omitempty"`
}

// RegistrationResult is the registration backend's answer
type RegistrationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResult response type
type HealthResult struct {
	Status   string `json:"status"`
	Storage  string `json:"storage,omitempty"`
	Sessions int    `json:"sessions"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Username, u.ID)
	fmt.Printf("Email: %s\n", u.Email)
	if !u.CreatedAt.IsZero() {
		fmt.Printf("Created: %s\n", u.CreatedAt.Format(time.RFC1123))
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.SessionToken)
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Format(time.RFC1123))
}

func (o *Output) printSignup(s Signup) {
	fmt.Printf("Signup: %s\n", s.SessionID)
	fmt.Printf("State: %s (%s)\n", s.State, s.Strategy)
	fmt.Printf("Username: %s\n", s.Username)
	fmt.Printf("Email: %s\n", s.Email)
	if s.Submitting {
		fmt.Println("Submitting...")
	}
	if s.Error != "" {
		fmt.Printf("Error: %s\n", s.Error)
	}
	if s.Challenge != nil {
		o.printChallenge(s.Challenge)
	}
	if s.LastResult != nil {
		o.printRegistrationResult(*s.LastResult)
	}
}

func (o *Output) printChallenge(c *Challenge) {
	fmt.Printf("\nChallenge: %s\n", c.Kind)
	switch c.Kind {
	case "token":
		fmt.Printf("Site key: %s\n", c.SiteKey)
	case "delay":
		if !c.Acknowledged {
			fmt.Println("Acknowledge to start the countdown")
		} else if c.ReadyAt != nil {
			fmt.Printf("Ready at: %s\n", c.ReadyAt.Format(time.RFC3339))
		}
	case "target":
		fmt.Printf("Pick: %s\n", c.Target)
	}
	if len(c.Cards) > 0 {
		cells := make([]string, 0, len(c.Cards))
		for _, card := range c.Cards {
			symbol := card.Symbol
			switch {
			case card.Solved:
				symbol = "[" + symbol + "]"
			case symbol == "":
				symbol = "?"
			}
			cells = append(cells, fmt.Sprintf("%d:%s", card.Index, symbol))
		}
		fmt.Printf("Cards: %s\n", strings.Join(cells, "  "))
	}
	fmt.Printf("Expires: %s\n", c.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printRegistrationResult(r RegistrationResult) {
	if r.Success {
		fmt.Printf("Registered: %s\n", r.Message)
	} else {
		fmt.Printf("Rejected: %s\n", r.Message)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	if h.Storage != "" {
		fmt.Printf("Storage: %s\n", h.Storage)
	}
	fmt.Printf("Open signups: %d\n", h.Sessions)
}
