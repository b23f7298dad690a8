package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qrplay/internal/application"
	"qrplay/internal/domain"
)

func newClassifyCmd() *cobra.Command {
	var (
		room   string
		mode   string
		volume int
	)

	cmd := &cobra.Command{
		Use:   "classify <code>...",
		Short: "Print the command and speaker calls each code would produce",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queueMode, err := domain.ParseQueueMode(mode)
			if err != nil {
				return err
			}
			state := domain.NewSessionState(room, queueMode)
			dispatcher := application.NewDispatcher(application.DispatcherOptions{DefaultVolume: volume})

			out := cmd.OutOrStdout()
			for _, code := range args {
				command := domain.Classify(code)
				fmt.Fprintf(out, "%s\n  command: %s\n", code, command)

				plan, err := dispatcher.Plan(command, state)
				if err != nil {
					fmt.Fprintf(out, "  error: %v\n", err)
					continue
				}
				for _, call := range plan.Calls {
					fmt.Fprintf(out, "  call: %s\n", call.URLPath())
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&room, "room", "Büro", "current room to plan against")
	cmd.Flags().StringVar(&mode, "mode", string(domain.DefaultQueueMode), "queue mode to plan against")
	cmd.Flags().IntVar(&volume, "default-volume", 25, "volume applied when switching rooms")

	return cmd
}
