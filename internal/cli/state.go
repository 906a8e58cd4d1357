package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hongminglow/medtour-be/internal/statesync"
)

var (
	setValue   string
	mergeValue string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a document, preferring the remote copy",
	RunE:  runShow,
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace a document with a JSON value",
	RunE:  runSet,
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge top-level fields of a JSON object into a document",
	RunE:  runMerge,
}

func init() {
	setCmd.Flags().StringVar(&setValue, "value", "", "JSON value")
	mergeCmd.Flags().StringVar(&mergeValue, "value", "", "JSON object")
}

func runShow(cmd *cobra.Command, _ []string) error {
	if err := requireScope(); err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	h, err := statesync.Open(cmd.Context(), a.sync, scopeID, stateKey, json.RawMessage("null"))
	if err != nil {
		return err
	}
	defer h.Close()
	select {
	case <-h.Ready():
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(h.Value()))
	return nil
}

func runSet(cmd *cobra.Command, _ []string) error {
	if err := requireScope(); err != nil {
		return err
	}
	raw := strings.TrimSpace(setValue)
	if !json.Valid([]byte(raw)) {
		return fmt.Errorf("--value must be valid JSON")
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	h, err := statesync.Open(cmd.Context(), a.sync, scopeID, stateKey, json.RawMessage("null"))
	if err != nil {
		return err
	}
	defer h.Close()
	<-h.Ready()
	if err := h.Set(json.RawMessage(raw)); err != nil {
		return err
	}
	return h.Flush(cmd.Context())
}

func runMerge(cmd *cobra.Command, _ []string) error {
	if err := requireScope(); err != nil {
		return err
	}
	var patch map[string]json.RawMessage
	if err := json.Unmarshal([]byte(mergeValue), &patch); err != nil || patch == nil {
		return fmt.Errorf("--value must be a JSON object")
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	h, err := statesync.Open(cmd.Context(), a.sync, scopeID, stateKey, json.RawMessage("null"))
	if err != nil {
		return err
	}
	defer h.Close()
	<-h.Ready()

	var mergeErr error
	err = h.Update(func(prev json.RawMessage) json.RawMessage {
		mergeErr = nil
		fields, err := objectFields(prev)
		if err != nil {
			mergeErr = err
			return prev
		}
		for k, v := range patch {
			fields[k] = v
		}
		next, err := json.Marshal(fields)
		if err != nil {
			mergeErr = err
			return prev
		}
		return next
	})
	if err != nil {
		return err
	}
	if mergeErr != nil {
		return mergeErr
	}
	if err := h.Flush(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(h.Value()))
	return nil
}

// objectFields decodes a stored document for merging. Only an absent (null)
// document or a JSON object can be merged into.
func objectFields(doc json.RawMessage) (map[string]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(doc))
	if trimmed == "" || trimmed == "null" {
		return map[string]json.RawMessage{}, nil
	}
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("document %s/%s is not a JSON object; use set to replace it", scopeID, stateKey)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", scopeID, stateKey, err)
	}
	return fields, nil
}
