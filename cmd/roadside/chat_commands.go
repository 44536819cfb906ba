package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Mushfiqur07/roadeside-sub002/internal/ui"
)

func (a *app) chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with your counterpart on a request",
	}

	cmd.AddCommand(
		a.chatListCmd(),
		a.chatOpenCmd(),
		a.chatSendCmd(),
		a.chatUploadCmd(),
	)
	return cmd
}

func (a *app) chatListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your chats with unread counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			chats, err := a.chat.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(chats))
			for _, c := range chats {
				last := ""
				if c.LastMessageAt != nil {
					last = c.LastMessageAt.Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{c.ID, c.RequestID, fmt.Sprintf("%d", c.Unread), last})
			}
			ui.RenderTable(os.Stdout, []string{"CHAT", "REQUEST", "UNREAD", "LAST"}, rows)
			return nil
		},
	}
}

func (a *app) chatOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <request-id>",
		Short: "Open the chat for a request and print recent messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireAuth(cmd.Context())
			if err != nil {
				return err
			}
			chat, messages, err := a.chat.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Chat %s\n", chat.ID)
			for _, msg := range messages {
				who := "them"
				if msg.SenderID == user.ID {
					who = "you"
				}
				fmt.Printf("[%s] %s: %s\n", msg.SentAt.Format("15:04"), who, msg.Body)
				for _, att := range msg.Attachments {
					fmt.Printf("        attachment: %s (%s)\n", att.FileName, att.URL)
				}
			}
			return nil
		},
	}
}

func (a *app) chatSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <request-id> <message>",
		Short: "Send a message (with any uploaded draft attachments)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			if _, _, err := a.chat.Open(cmd.Context(), args[0]); err != nil {
				return err
			}
			message, err := a.chat.Send(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Sent %s\n", message.ID)
			return nil
		},
	}
}

func (a *app) chatUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <request-id> <file>...",
		Short: "Upload attachments to the compose draft",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			if _, _, err := a.chat.Open(cmd.Context(), args[0]); err != nil {
				return err
			}

			files := make(map[string]io.Reader, len(args)-1)
			var handles []*os.File
			defer func() {
				for _, f := range handles {
					f.Close()
				}
			}()
			for _, path := range args[1:] {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				handles = append(handles, f)
				files[filepath.Base(path)] = f
			}

			attachments, err := a.chat.Upload(cmd.Context(), files)
			if err != nil {
				return err
			}
			for _, att := range attachments {
				fmt.Printf("Uploaded %s -> %s\n", att.FileName, att.URL)
			}
			return nil
		},
	}
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow realtime request and chat events",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a.channel.Connect(ctx, a.session.Token())
			defer a.channel.Close()

			a.controller.Attach(ctx, a.channel)
			a.chat.Attach(ctx, a.channel)

			id, events := a.channel.Subscribe()
			defer a.channel.Unsubscribe(id)

			fmt.Println("Watching for events; Ctrl-C to stop")
			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-events:
					if !ok {
						return nil
					}
					fmt.Printf("%s %s\n", event.Type, string(event.Payload))
				}
			}
		},
	}
}
