package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stock-qr/pkg/config"
	"github.com/jhoicas/stock-qr/pkg/jwt"
	"github.com/jhoicas/stock-qr/pkg/logger"
)

func main() {
	operator := flag.String("operator", "", "identificador del operador")
	stationID := flag.String("station", "", "identificador de la estación")
	role := flag.String("role", jwt.RoleOperator, "rol: operador | supervisor")
	minutes := flag.Int("minutes", 0, "vigencia en minutos (0 usa JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "token", Out: os.Stderr})

	if *operator == "" || *stationID == "" {
		flag.Usage()
		os.Exit(2)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET vacío")
	}

	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *operator, *stationID, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		log.Fatal().Err(err).Msg("generar token")
	}
	log.Info().Str("operator", *operator).Str("station", *stationID).Str("role", *role).Int("minutes", exp).Msg("token emitido")
	fmt.Println(tok)
}
