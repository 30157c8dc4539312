package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sonderlabs/mirror/internal/analyzer"
	"github.com/sonderlabs/mirror/internal/insight"
	"github.com/sonderlabs/mirror/internal/reflection"
	"github.com/sonderlabs/mirror/internal/session"
	"github.com/sonderlabs/mirror/internal/store"
)

const replConversationID = "local"

var farewells = map[string]bool{
	"quit": true,
	"exit": true,
	"bye":  true,
	"cya":  true,
}

// runREPL drives one conversation over stdin. Blank input is skipped,
// `insights` prints the session summary, quit/exit/bye/cya ends.
func runREPL(ctx context.Context, an *analyzer.Analyzer, responder *reflection.Responder, db *store.Store, themes []string) {
	sess := session.New(replConversationID)
	if db != nil {
		if st, exchanges, err := db.LoadSession(ctx, replConversationID); err == nil {
			sess = session.Restore(replConversationID, st, exchanges)
			fmt.Printf("Picking up where we left off (%d earlier exchanges).\n", exchanges)
		}
	}

	fmt.Println("Mirror is listening. Type something, or 'insights' for a summary.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			fmt.Println("I'm here when you're ready.")
			continue
		}
		if farewells[strings.ToLower(line)] {
			fmt.Println("Thanks for the chat. Take care!")
			return
		}
		if strings.EqualFold(line, "insights") {
			printSummary(sess)
			continue
		}

		a, err := an.Analyze(ctx, line, themes)
		if err != nil {
			fmt.Printf("I couldn't take that in: %v\n", err)
			continue
		}

		turn := sess.Record(a)
		reply := responder.Respond(a)

		if db != nil {
			if err := db.SaveTurn(ctx, replConversationID, turn.ID, turn.Seq, a); err != nil {
				fmt.Fprintf(os.Stderr, "warning: turn not persisted: %v\n", err)
			}
		}

		fmt.Println(reply.Acknowledgment)
		fmt.Println(reply.Question)
		fmt.Println(reply.ActionPoint)
	}
}

func printSummary(sess *session.Session) {
	sum, err := sess.Summary()
	if err != nil {
		fmt.Println("No conversation data yet.")
		return
	}
	renderSummary(os.Stdout, sum)
}

// renderSummary prints the summary as labelled lines, one field per
// line.
func renderSummary(w io.Writer, sum *insight.Summary) {
	fmt.Fprintf(w, "  total_exchanges: %d\n", sum.TotalExchanges)
	if sum.MostDiscussedTheme != nil {
		fmt.Fprintf(w, "  most_discussed_theme: %s (%d mentions)\n",
			sum.MostDiscussedTheme.Theme, sum.MostDiscussedTheme.Count)
	} else {
		fmt.Fprintln(w, "  most_discussed_theme: none")
	}
	fmt.Fprintf(w, "  recent_emotional_pattern: %s\n", strings.Join(sum.RecentEmotions, ", "))
	fmt.Fprintf(w, "  unique_entities_mentioned: %d\n", sum.UniqueEntities)

	var themes []string
	for pair := sum.ConversationThemes.Oldest(); pair != nil; pair = pair.Next() {
		themes = append(themes, fmt.Sprintf("%s: %d", pair.Key, pair.Value))
	}
	fmt.Fprintf(w, "  conversation_themes: %s\n", strings.Join(themes, ", "))
}
