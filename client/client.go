// Package client implements the interactive terminal client: stdin lines are
// turned into protocol frames (#-prefixed commands, plain chat otherwise)
// and server frames are rendered back to the terminal.
package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"chat-hall/domain"
	"chat-hall/protocol"
)

// Client holds one connection to the chat server. The frame writer is shared
// by the stdin loop and the shutdown path, so writes are serialized.
type Client struct {
	conn net.Conn

	mu sync.Mutex
	w  *protocol.FrameWriter

	identity string
}

// Run connects, performs the setup sequence (bootstrap identity, MainHall
// join, room list, hall contents) and then relays between stdin and the
// server until the server confirms the departure or the context ends.
func Run(ctx context.Context, host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not connect to server at %s: %w", addr, err)
	}
	defer conn.Close()

	c := &Client{conn: conn, w: protocol.NewFrameWriter(conn)}
	if err := c.bootstrap(); err != nil {
		return err
	}

	go c.readInput(os.Stdin)
	go func() {
		// Ctrl+C becomes a regular quit so the server runs the full
		// teardown and confirms with the departure frame.
		<-ctx.Done()
		_ = c.send(protocol.Quit{})
	}()

	return c.readServer()
}

func (c *Client) bootstrap() error {
	setup := []protocol.Frame{
		protocol.IdentityChange{},
		protocol.Join{RoomID: domain.MainHall},
		protocol.List{},
		protocol.Who{RoomID: domain.MainHall},
	}
	for _, f := range setup {
		if err := c.send(f); err != nil {
			return fmt.Errorf("connection setup failed: %w", err)
		}
	}
	return nil
}

func (c *Client) send(f protocol.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.Write(f)
}

// readServer renders incoming frames until the shutdown signal: a roomchange
// carrying an empty room id and this client's own identity.
func (c *Client) readServer() error {
	r := protocol.NewFrameReader(c.conn)
	for {
		frame, err := r.Read()
		if err != nil {
			color.Red.Println("Connection to server lost")
			return nil
		}

		switch f := frame.(type) {
		case protocol.Message:
			color.Bold.Print(f.Identity)
			fmt.Printf(": %s\n", f.Content)
		case protocol.NewIdentity:
			c.renderNewIdentity(f)
		case protocol.RoomChange:
			if f.RoomID == "" && f.Identity == c.identity {
				fmt.Printf("Disconnected from %s\n", c.conn.RemoteAddr())
				return nil
			}
			c.renderRoomChange(f)
		case protocol.RoomContents:
			c.renderRoomContents(f)
		case protocol.RoomList:
			c.renderRoomList(f)
		default:
			color.Red.Println("Please use a valid message")
		}
	}
}

func (c *Client) renderNewIdentity(f protocol.NewIdentity) {
	switch {
	case c.identity == "":
		c.identity = f.Identity
		color.Green.Printf("Connected to %s as %s\n", c.conn.RemoteAddr(), c.identity)
	case f.Former == f.Identity:
		color.Red.Println("Requested identity invalid or in use")
	default:
		if f.Former == c.identity {
			c.identity = f.Identity
		}
		fmt.Printf("%s is now %s\n", f.Former, f.Identity)
	}
}

func (c *Client) renderRoomChange(f protocol.RoomChange) {
	if f.RoomID == "" {
		fmt.Printf("%s left the server\n", f.Identity)
		return
	}
	fmt.Printf("%s moves to %s\n", f.Identity, f.RoomID)
}

func (c *Client) renderRoomContents(f protocol.RoomContents) {
	fmt.Printf("%s contains %s", f.RoomID, strings.Join(f.Identities, " "))
	if f.Owner != "" {
		fmt.Printf(" Owner: %s", f.Owner)
	}
	fmt.Println()
}

func (c *Client) renderRoomList(f protocol.RoomList) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Guests"})
	for _, row := range lo.Map(f.Rooms, func(r protocol.RoomCount, _ int) []string {
		return []string{r.RoomID, strconv.Itoa(r.Count)}
	}) {
		table.Append(row)
	}
	table.Render()
}

// readInput parses keyboard input: lines starting with '#' are commands,
// anything else is a chat message for the current room.
func (c *Client) readInput(in *os.File) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			if err := c.send(protocol.Message{Content: line}); err != nil {
				return
			}
			continue
		}
		if err := c.command(strings.Fields(line)); err != nil {
			return
		}
	}
}

func (c *Client) command(tokens []string) error {
	switch tokens[0] {
	case "#quit":
		return c.send(protocol.Quit{})

	case "#identitychange":
		if len(tokens) < 2 {
			color.Red.Println("No name included. Please try again.")
			return nil
		}
		if !domain.ValidIdentity(tokens[1]) {
			color.Red.Println("Names must be alphanumeric, 3-16 characters, and must not start with a number.")
			return nil
		}
		return c.send(protocol.IdentityChange{Identity: tokens[1]})

	case "#join":
		if len(tokens) < 2 {
			color.Red.Println("Please provide the name of the room you would like to join.")
			return nil
		}
		if tokens[1] != domain.MainHall && !domain.ValidRoomName(tokens[1]) {
			color.Red.Println("Invalid room name.")
			return nil
		}
		return c.send(protocol.Join{RoomID: tokens[1]})

	case "#who":
		if len(tokens) < 2 {
			color.Red.Println("Please provide the name of the room you wish to inspect.")
			return nil
		}
		return c.send(protocol.Who{RoomID: tokens[1]})

	case "#list":
		return c.send(protocol.List{})

	case "#createroom":
		if len(tokens) < 2 || !domain.ValidRoomName(tokens[1]) {
			color.Red.Println("Rooms must be alphanumeric with at least 3 characters and no more than 32 characters.")
			return nil
		}
		return c.send(protocol.CreateRoom{RoomID: tokens[1]})

	case "#delete":
		if len(tokens) < 2 {
			color.Red.Println("Please provide the name of the room you wish to delete.")
			return nil
		}
		return c.send(protocol.Delete{RoomID: tokens[1]})

	case "#kick":
		if len(tokens) < 4 {
			color.Red.Println("Please provide the room, followed by the time, followed by the user you wish to kick.")
			return nil
		}
		seconds, err := strconv.ParseInt(tokens[2], 10, 64)
		if err != nil {
			color.Red.Println("The ban time must be a number of seconds.")
			return nil
		}
		return c.send(protocol.Kick{RoomID: tokens[1], Time: seconds, Identity: tokens[3]})

	default:
		color.Red.Println("You may have typed a command incorrectly")
		return nil
	}
}
