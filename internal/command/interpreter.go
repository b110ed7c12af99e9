// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

// Package command interprets player input: speech sigils, builtin verbs,
// verb attributes on entities, and exit movement.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tapestrymud/tapestry/internal/observability"
	"github.com/tapestrymud/tapestry/internal/world"
)

var tracer = otel.Tracer("tapestry/command")

// fallbackPhrases close the response of last resort, appended after the
// player's quoted input.
var fallbackPhrases = []string{
	"I'm sure that means something to somebody.",
	"the universe remains unmoved.",
	"nothing happens.",
	"whatever that was supposed to do, it didn't.",
	"perhaps try something this world understands?",
}

// Interpreter evaluates one line of player input at a time. Each
// evaluation runs as a single critical section on the world engine, so
// a command observes and mutates a consistent graph.
type Interpreter struct {
	engine   *world.Engine
	registry *Registry
}

// NewInterpreter creates an interpreter over the given engine and verb
// registry.
func NewInterpreter(engine *world.Engine, registry *Registry) *Interpreter {
	return &Interpreter{
		engine:   engine,
		registry: registry,
	}
}

// Eval interprets one line of input from the user. Domain errors are
// delivered to the user as plain text; a panicking handler is contained,
// logged, and reported to the user as a generic failure. Eval never
// returns an error to the transport: by this point every failure is a
// conversation with the player.
func (i *Interpreter) Eval(ctx context.Context, userID ulid.ULID, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	verb := evalVerb(line)

	ctx, span := tracer.Start(ctx, "command.eval",
		trace.WithAttributes(
			attribute.String("command.verb", verb),
			attribute.String("user.id", userID.String()),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "command panicked",
				"verb", verb,
				"user_id", userID.String(),
				"panic", r,
			)
			span.SetStatus(codes.Error, fmt.Sprintf("panic: %v", r))
			observability.RecordCommand(verb, "panic")
			i.deliver(userID, "Something has gone badly wrong. The cosmos shudders and resumes.")
		}
	}()

	err := i.engine.With(func(svc *world.Service) error {
		return i.dispatch(ctx, svc, userID, line)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordCommand(verb, "error")
		i.deliver(userID, err.Error())
		return
	}
	observability.RecordCommand(verb, "ok")
}

// evalVerb extracts the verb label for telemetry: the sigil name or the
// first word.
func evalVerb(line string) string {
	switch line[0] {
	case '"':
		return "say"
	case '!':
		return "shout"
	case ':':
		return "emote"
	case '@':
		return "tell"
	}
	verb, _, _ := strings.Cut(line, " ")
	return strings.ToLower(verb)
}

func (i *Interpreter) deliver(userID ulid.ULID, text string) {
	_ = i.engine.With(func(svc *world.Service) error {
		svc.EmitToUser(userID, text)
		return nil
	})
}

// dispatch resolves one input line against the interpretation chain:
// sigils, builtin verbs, verb attributes (user, room, direct object,
// indirect object), exits out of the room, the room's "huh" attribute,
// and finally the response of last resort.
func (i *Interpreter) dispatch(ctx context.Context, svc *world.Service, userID ulid.ULID, line string) error {
	user, ok := svc.Store().Get(userID)
	if !ok || user.Kind != world.KindUser {
		return world.ValueErrorf("unknown user")
	}
	var room *world.Entity
	if user.User.LocationID != nil {
		room, _ = svc.Store().Get(*user.User.LocationID)
	}

	switch line[0] {
	case '"':
		return Say(svc, user, room, line[1:])
	case '!':
		return Shout(svc, user, room, line[1:])
	case ':':
		return Emote(svc, user, room, line[1:])
	case '@':
		return Tell(svc, user, room, line[1:])
	}

	verb, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	if handler, ok := i.registry.Get(strings.ToLower(verb)); ok {
		return handler(ctx, &Execution{
			Svc:       svc,
			User:      user,
			Room:      room,
			Args:      args,
			InvokedAs: strings.ToLower(verb),
		})
	}

	dobj, _, iobj, err := GetObjects(svc, user, room, args)
	if err != nil {
		return err
	}

	// An unknown verb may be an attribute on something in context.
	candidates := []*world.Entity{user, room}
	if dobj != nil {
		candidates = append(candidates, dobj.Entity)
	}
	if iobj != nil {
		candidates = append(candidates, iobj.Entity)
	}
	for _, e := range candidates {
		if e == nil {
			continue
		}
		if value, ok := e.Attr(verb); ok {
			svc.EmitToUser(userID, renderValue(value))
			return nil
		}
	}

	// Or the name of an exit leading out of here.
	if room != nil {
		for _, exitID := range room.Room.ExitsOut {
			exit, ok := svc.Store().Get(exitID)
			if ok && exit.MatchesName(verb) && world.IsVisible(exit, user) {
				return svc.Move(user.ID, exit.ID, user)
			}
		}
	}

	if room != nil {
		if huh, ok := room.Attr("huh"); ok {
			svc.EmitToUser(userID, renderValue(huh))
			return nil
		}
	}

	svc.EmitToUser(userID, fmt.Sprintf("%q, %s", line, fallbackPhrases[rand.IntN(len(fallbackPhrases))]))
	return nil
}
