// Package sqlgen emits the SQL seed script for the policy engine's auth
// database: schema, user rows, attribute rows, and the finalized rules.
package sqlgen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkruglov/abacgen/internal/config"
	"github.com/pkruglov/abacgen/internal/rule"
)

const schemaHeader = `create database if not exists abacauth;
use abacauth;

create table users (
	userid	int auto_increment primary key,
	clientid 	varchar(64),
	username	varchar(64),
	password	varchar(64)
);

create table user_attributes (
	userid	int,
	name	varchar(64),
	val	varchar(255),
	foreign key (userid) references users(userid) on delete cascade
);

`

const rulesSchema = `create table rules (
	ruleid int auto_increment primary key,
	topic varchar(1024),
	static varchar(4096),
	dynamic varchar(4096),
	filter varchar(4096),
	hints set('subj','obj','ctx','payload','json','dsubj'),
	action enum('filter', 'grant', 'deny'),
	priority int
);

`

// Escape doubles embedded single quotes for use in a SQL string literal.
func Escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quote wraps a value as an escaped SQL string literal.
func quote(s string) string {
	return "'" + Escape(s) + "'"
}

// WriteScript writes the complete seed script. Row order within each
// insert block follows the input collection order.
func WriteScript(w io.Writer, cfg *config.Config, rules []rule.PolicyRule) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(schemaHeader); err != nil {
		return err
	}

	fmt.Fprintln(bw, "-- users from settings")
	if len(cfg.Users) == 0 {
		fmt.Fprint(bw, "-- (no users configured)\n\n")
	} else {
		fmt.Fprintln(bw, "insert into users (userid, clientid, username, password) values")
		rows := make([]string, len(cfg.Users))
		for i, u := range cfg.Users {
			rows[i] = fmt.Sprintf("(%d, %s, %s, %s)",
				u.UserID, quote(u.ClientID), quote(u.Username), quote(u.Password))
		}
		fmt.Fprintf(bw, "%s;\n\n", strings.Join(rows, ",\n"))
	}

	fmt.Fprintln(bw, "-- user attributes from settings")
	if len(cfg.UserAttributes) == 0 {
		fmt.Fprint(bw, "-- (no user attributes configured)\n\n")
	} else {
		fmt.Fprintln(bw, "insert into user_attributes (userid, name, val) values")
		rows := make([]string, len(cfg.UserAttributes))
		for i, a := range cfg.UserAttributes {
			rows[i] = fmt.Sprintf("(%d, %s, %s)", a.UserID, quote(a.Name), quote(a.Value))
		}
		fmt.Fprintf(bw, "%s;\n\n", strings.Join(rows, ",\n"))
	}

	if _, err := bw.WriteString(rulesSchema); err != nil {
		return err
	}

	fmt.Fprintln(bw, "-- generated rules")
	if len(rules) == 0 {
		fmt.Fprintln(bw, "-- (no rules generated)")
		return bw.Flush()
	}

	fmt.Fprintln(bw, "insert into rules (topic, static, dynamic, filter, hints, action, priority) values")
	rows := make([]string, len(rules))
	for i, r := range rules {
		rows[i] = fmt.Sprintf("(%s, %s, %s, %s, %s, %s, %d)",
			quote(r.Topic), quote(r.Static), quote(r.Dynamic), quote(r.Filter),
			quote(rule.HintString(r.Hints)), quote(string(r.Action)), r.Priority)
	}
	fmt.Fprintf(bw, "%s;\n", strings.Join(rows, ",\n"))
	return bw.Flush()
}

// WriteFile writes the seed script to a file path.
func WriteFile(path string, cfg *config.Config, rules []rule.PolicyRule) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := WriteScript(f, cfg, rules); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
