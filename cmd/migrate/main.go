package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/CamiloVelandia/MesaFacil/internal/pkg/env"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	// Cargar variables de entorno desde el archivo .env
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Conexión a la base de datos para las migraciones
	dbURL := fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		env.GetEnv("DB_USER", "mesafacil"),
		env.GetEnv("DB_PASSWORD", "mesafacil"),
		env.GetEnv("DB_HOST", "db"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", "mesafacil_db"),
	)

	log.Printf("Conectando a la base de datos: %s@%s:%s/%s",
		env.GetEnv("DB_USER", "mesafacil"),
		env.GetEnv("DB_HOST", "db"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", "mesafacil_db"),
	)

	m, err := migrate.New(
		"file://migrations", // Ruta a los archivos de migración
		dbURL,
	)
	if err != nil {
		log.Fatalf("Error al inicializar la migración: %v", err)
	}

	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Printf("Error al cerrar los recursos de migración: %v, %v", sourceErr, dbErr)
		}
	}()

	switch command {
	case "up":
		// Ejecutar todas las migraciones pendientes
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Error al ejecutar las migraciones: %v", err)
		} else if err == migrate.ErrNoChange {
			log.Println("Sin cambios: la base de datos ya está actualizada")
		} else {
			log.Println("Migraciones ejecutadas correctamente")
		}

	case "down":
		// Revertir la última migración
		if err := m.Steps(-1); err != nil {
			log.Fatalf("Error al revertir la última migración: %v", err)
		} else {
			log.Println("Última migración revertida correctamente")
		}

	case "goto":
		if len(os.Args) < 3 {
			log.Fatalf("Indica un número de versión")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			log.Fatalf("Número de versión inválido: %v", err)
		}

		// Migrar a una versión específica
		if err := m.Migrate(uint(version)); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Error al migrar a la versión %d: %v", version, err)
		} else if err == migrate.ErrNoChange {
			log.Printf("Sin cambios: la base de datos ya está en la versión %d", version)
		} else {
			log.Printf("Migración a la versión %d completada", version)
		}

	case "status":
		// Mostrar la versión actual de migración
		version, dirty, err := m.Version()
		if err != nil {
			if err == migrate.ErrNilVersion {
				log.Println("Todavía no se ha ejecutado ninguna migración")
			} else {
				log.Fatalf("Error al consultar la versión de migración: %v", err)
			}
		} else {
			dirtyStatus := ""
			if dirty {
				dirtyStatus = " (dirty)"
			}
			log.Printf("Versión de migración actual: %d%s", version, dirtyStatus)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Uso: go run cmd/migrate/main.go [command]")
	fmt.Println("Comandos disponibles:")
	fmt.Println("  up     - Ejecuta todas las migraciones pendientes")
	fmt.Println("  down   - Revierte la última migración")
	fmt.Println("  goto N - Migra a la versión N")
	fmt.Println("  status - Muestra la versión actual de migración")
}
