// uniridectl is a small operations CLI over the uniride HTTP API. It drives
// the same SDK the application clients use, so every precondition the SDK
// checks locally applies here too.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"uniride/internal/client"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	baseURL := os.Getenv("UNIRIDE_API")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	home, _ := os.UserHomeDir()
	store := &client.FileTokenStore{Path: filepath.Join(home, ".uniride", "token")}
	_ = os.MkdirAll(filepath.Dir(store.Path), 0o700)

	guard := client.NewTokenGuard(baseURL, store)
	api := client.New(baseURL, guard)
	trips := client.NewTripAPI(api)
	vehicles := client.NewVehicleAPI(api)
	account := client.NewAccountAPI(api, guard)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, account, os.Args[2:])
	case "logout":
		err = account.Logout()
	case "me":
		err = printResult(account.Me(ctx))
	case "search":
		err = runSearch(ctx, trips, os.Args[2:])
	case "trips":
		err = printResult(trips.All(ctx))
	case "mine":
		err = printResult(trips.Mine(ctx))
	case "publish":
		err = runPublish(ctx, trips, os.Args[2:])
	case "apply":
		err = runApply(ctx, trips, account, os.Args[2:])
	case "accept":
		err = runPair(ctx, os.Args[2:], trips.Accept)
	case "remove-passenger":
		err = runPair(ctx, os.Args[2:], trips.RemovePassenger)
	case "start":
		err = runStart(ctx, trips, os.Args[2:])
	case "finish":
		err = runFinish(ctx, trips, os.Args[2:])
	case "cancel":
		err = runSingle(ctx, os.Args[2:], trips.Cancel)
	case "leave":
		err = runLeave(ctx, trips, account, os.Args[2:])
	case "vehicles":
		err = printResult(vehicles.List(ctx))
	case "vehicle-add":
		err = runVehicleAdd(ctx, vehicles, os.Args[2:])
	case "vehicle-rm":
		err = runVehicleRm(ctx, vehicles, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: uniridectl <command> [flags]

commands:
  login       -email -password
  logout
  me
  search      -from-lat -from-lng -to-lat -to-lng -date [-time] [-radius]
  trips       list all open trips
  mine        list trips you published
  publish     -from-* -to-* -time -seats [-fare] [-vehicle]
  apply       -trip -seats
  accept      -trip -user
  remove-passenger -trip -user
  start       -trip
  finish      -trip
  cancel      -trip
  leave       -trip
  vehicles
  vehicle-add -plate -model -capacity -soat [-photo]
  vehicle-rm  -id

environment:
  UNIRIDE_API  backend base URL (default http://localhost:8080)`)
}

func printResult(v any, err error) error {
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runLogin(ctx context.Context, account *client.AccountAPI, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	session, err := account.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s %s (%s)\n", session.User.FirstName, session.User.LastName, session.User.Email)
	return nil
}

func runSearch(ctx context.Context, trips *client.TripAPI, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	fromLat := fs.Float64("from-lat", 0, "origin latitude")
	fromLng := fs.Float64("from-lng", 0, "origin longitude")
	toLat := fs.Float64("to-lat", 0, "destination latitude")
	toLng := fs.Float64("to-lng", 0, "destination longitude")
	date := fs.String("date", "", "departure date YYYY-MM-DD")
	hhmm := fs.String("time", "", "earliest departure HH:MM")
	radius := fs.Float64("radius", 0, "search radius in km")
	_ = fs.Parse(args)

	return printResult(trips.Search(ctx, client.SearchParams{
		FromLat: *fromLat, FromLng: *fromLng,
		ToLat: *toLat, ToLng: *toLng,
		Date: *date, Time: *hhmm, RadiusKm: *radius,
	}))
}

func runPublish(ctx context.Context, trips *client.TripAPI, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	fromAddr := fs.String("from", "", "origin address")
	fromLat := fs.Float64("from-lat", 0, "origin latitude")
	fromLng := fs.Float64("from-lng", 0, "origin longitude")
	toAddr := fs.String("to", "", "destination address")
	toLat := fs.Float64("to-lat", 0, "destination latitude")
	toLng := fs.Float64("to-lng", 0, "destination longitude")
	departure := fs.String("time", "", "departure time RFC 3339")
	seats := fs.Int("seats", 0, "seats offered")
	fare := fs.Float64("fare", 0, "fare per seat, 0 asks for a suggestion")
	vehicleID := fs.String("vehicle", "", "vehicle id, empty uses your first vehicle")
	_ = fs.Parse(args)

	return printResult(trips.Publish(ctx, client.PublishRequest{
		VehicleID:   *vehicleID,
		Start:       client.Location{Address: *fromAddr, Lat: *fromLat, Lng: *fromLng},
		Destination: client.Location{Address: *toAddr, Lat: *toLat, Lng: *toLng},
		Time:        *departure,
		Seats:       *seats,
		Fare:        *fare,
	}))
}

func runApply(ctx context.Context, trips *client.TripAPI, account *client.AccountAPI, args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	tripID := fs.String("trip", "", "trip id")
	seats := fs.Int("seats", 1, "seats requested")
	_ = fs.Parse(args)

	me, err := account.Me(ctx)
	if err != nil {
		return err
	}
	trip, err := trips.Get(ctx, *tripID)
	if err != nil {
		return err
	}
	return printResult(trips.Apply(ctx, trip, me.UID, *seats, nil, nil))
}

func runPair(ctx context.Context, args []string, fn func(context.Context, string, string) (*client.Trip, error)) error {
	fs := flag.NewFlagSet("pair", flag.ExitOnError)
	tripID := fs.String("trip", "", "trip id")
	userUID := fs.String("user", "", "passenger uid")
	_ = fs.Parse(args)

	return printResult(fn(ctx, *tripID, *userUID))
}

func runSingle(ctx context.Context, args []string, fn func(context.Context, string) (*client.Trip, error)) error {
	fs := flag.NewFlagSet("single", flag.ExitOnError)
	tripID := fs.String("trip", "", "trip id")
	_ = fs.Parse(args)

	return printResult(fn(ctx, *tripID))
}

func runStart(ctx context.Context, trips *client.TripAPI, args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	tripID := fs.String("trip", "", "trip id")
	_ = fs.Parse(args)

	trip, err := trips.Get(ctx, *tripID)
	if err != nil {
		return err
	}
	return printResult(trips.Start(ctx, trip))
}

func runFinish(ctx context.Context, trips *client.TripAPI, args []string) error {
	fs := flag.NewFlagSet("finish", flag.ExitOnError)
	tripID := fs.String("trip", "", "trip id")
	_ = fs.Parse(args)

	result, err := trips.Finish(ctx, *tripID)
	if err != nil {
		return err
	}
	return printResult(result, nil)
}

func runLeave(ctx context.Context, trips *client.TripAPI, account *client.AccountAPI, args []string) error {
	fs := flag.NewFlagSet("leave", flag.ExitOnError)
	tripID := fs.String("trip", "", "trip id")
	_ = fs.Parse(args)

	me, err := account.Me(ctx)
	if err != nil {
		return err
	}
	trip, err := trips.Get(ctx, *tripID)
	if err != nil {
		return err
	}
	return printResult(trips.CancelParticipation(ctx, trip, me.UID))
}

func runVehicleAdd(ctx context.Context, vehicles *client.VehicleAPI, args []string) error {
	fs := flag.NewFlagSet("vehicle-add", flag.ExitOnError)
	plate := fs.String("plate", "", "license plate")
	model := fs.String("model", "", "vehicle model")
	capacity := fs.Int("capacity", 0, "total seats including the driver's")
	soat := fs.String("soat", "", "SOAT document URL")
	photo := fs.String("photo", "", "vehicle photo URL")
	_ = fs.Parse(args)

	return printResult(vehicles.Register(ctx, client.RegisterVehicleRequest{
		LicensePlate: *plate,
		Model:        *model,
		Capacity:     *capacity,
		SOATURL:      *soat,
		PhotoURL:     *photo,
	}))
}

func runVehicleRm(ctx context.Context, vehicles *client.VehicleAPI, args []string) error {
	fs := flag.NewFlagSet("vehicle-rm", flag.ExitOnError)
	id := fs.String("id", "", "vehicle id")
	_ = fs.Parse(args)

	if err := vehicles.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Println("vehicle deleted")
	return nil
}
