package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"wipesim_enterprise/internal/config"
	"wipesim_enterprise/internal/logging"
	"wipesim_enterprise/internal/reporting"
	"wipesim_enterprise/internal/security"
	"wipesim_enterprise/internal/server"
	"wipesim_enterprise/internal/system"
	"wipesim_enterprise/internal/wipe"
)

const (
	Version = "1.0.2"
	AppName = "WipeSim Enterprise"

	// Exit codes
	EXIT_SUCCESS = 0
	EXIT_ERROR   = 1
	EXIT_WARNING = 2
)

var (
	verbose    bool
	configPath string
)

// CLI команды
var rootCmd = &cobra.Command{
	Use:     "wipesim",
	Short:   "WipeSim Enterprise - симулятор безопасного затирания устройств",
	Long:    "Демонстрационный бэкенд: симуляция многопроходного затирания устройств с сертификатами верификации",
	Version: Version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP API дашборда",
	RunE:  runServe,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Выполнить одну симуляцию затирания в консоли",
	RunE:  runSimulate,
}

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "Показать поддерживаемые методы и уровни",
	RunE:  runMethods,
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Построить дескриптор устройства из локального хоста",
	RunE:  runDetect,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Подробный вывод")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Путь к конфигурации")

	simulateCmd.Flags().String("name", "demo-device", "Имя устройства")
	simulateCmd.Flags().String("device-type", "laptop", "Тип устройства (laptop/desktop/smartphone/tablet/external_drive/server)")
	simulateCmd.Flags().String("os", "linux", "Семейство ОС (windows/macos/linux/android/ios)")
	simulateCmd.Flags().String("capacity", "512 GB", "Ёмкость устройства")
	simulateCmd.Flags().Bool("ssd", false, "Устройство на SSD")
	simulateCmd.Flags().Bool("hpa-dco", false, "Устройство поддерживает HPA/DCO")
	simulateCmd.Flags().StringP("method", "m", string(wipe.MethodNISTClear), "Метод затирания")
	simulateCmd.Flags().StringP("level", "l", string(wipe.LevelStandard), "Уровень (quick/standard/secure/military)")
	simulateCmd.Flags().String("output", "", "Путь для сохранения сертификата")
	simulateCmd.Flags().String("format", "", "Формат сертификата (json/csv), по умолчанию из конфигурации")

	rootCmd.AddCommand(serveCmd, simulateCmd, methodsCmd, detectCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	logger, err := logging.NewLogger(cfg, verbose)
	if err != nil {
		return fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	defer logger.Close()

	logger.Log("INFO", "Запуск "+AppName, "version", Version, "listen", cfg.Server.Listen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Установка обработчиков сигналов
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Log("WARN", "Получен сигнал, начинаем graceful shutdown", "signal", sig.String())
		fmt.Printf("\n[INFO] Получен сигнал %s, завершаем работу...\n", sig.String())
		cancel()
	}()

	srv := server.New(cfg, logger)
	return srv.ListenAndServe(ctx)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	logger, err := logging.NewLogger(cfg, verbose)
	if err != nil {
		return fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	defer logger.Close()

	name, _ := cmd.Flags().GetString("name")
	deviceType, _ := cmd.Flags().GetString("device-type")
	osType, _ := cmd.Flags().GetString("os")
	capacity, _ := cmd.Flags().GetString("capacity")
	isSSD, _ := cmd.Flags().GetBool("ssd")
	hpaDCO, _ := cmd.Flags().GetBool("hpa-dco")
	method, _ := cmd.Flags().GetString("method")
	level, _ := cmd.Flags().GetString("level")
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")

	device := &wipe.Device{
		ID:             reporting.GenerateRunID(),
		Name:           name,
		Type:           wipe.DeviceType(deviceType),
		OSType:         wipe.OSType(osType),
		Capacity:       capacity,
		IsSSD:          isSSD,
		SupportsHPADCO: hpaDCO,
	}

	opts := wipe.WipeOptions{
		Method: wipe.WipeMethod(method),
		Level:  wipe.ValidateLevel(wipe.SecurityLevel(level)),
	}

	engine := wipe.NewSimulationEngine(&wipe.EngineConfig{
		SSDStepDelay: cfg.SSDStepDelay(),
		HDDStepDelay: cfg.HDDStepDelay(),
		Operator:     security.Operator(cfg),
		Logger:       logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Printf("\n[INFO] Получен сигнал %s, отмена симуляции...\n", sig.String())
		engine.Stop()
	}()

	fmt.Printf("Симуляция затирания: %s (%s, %s)\n", device.Name, device.Type, device.OSType)
	fmt.Printf("Метод: %s, уровень: %s\n\n", opts.Method, opts.Level)

	result, err := engine.Start(ctx, device, opts, func(percent float64, message string) {
		fmt.Printf("\r[%5.1f%%] %-70s", percent, message)
	})
	fmt.Println()

	if err != nil {
		if errors.Is(err, wipe.ErrCancelled) {
			fmt.Println("Симуляция отменена")
			return nil
		}
		return fmt.Errorf("ошибка симуляции: %w", err)
	}

	fmt.Println("\nРезультаты симуляции:")
	fmt.Println("=====================")
	fmt.Printf("Проходов выполнено: %d\n", result.PassesCompleted)
	fmt.Printf("Секторов затёрто:   %d\n", result.SectorsWiped)
	fmt.Printf("Длительность:       %d мин\n", result.DurationMinutes)
	fmt.Printf("Хеш верификации:    %s\n", result.VerificationHash)
	fmt.Printf("Совместимость ОС:   %t\n", result.OSCompatible)
	fmt.Printf("HPA/DCO включены:   %t\n", result.HPAIncluded)
	fmt.Printf("SSD оптимизация:    %t\n", result.SSDOptimized)

	if cfg.Reporting.Enabled {
		if format == "" {
			format = cfg.Reporting.Format
		}
		cert := reporting.BuildCertificate(device, opts, result, security.Operator(cfg))
		path, err := reporting.SaveCertificate(cert, format, cfg.Reporting.LocalPath, output)
		if err != nil {
			return fmt.Errorf("ошибка сохранения сертификата: %w", err)
		}
		fmt.Printf("\nСертификат сохранён: %s\n", path)

		if cfg.Reporting.SignCertificates {
			key, err := reporting.EnsureSigningKeys(cfg.Reporting.KeyDir)
			if err != nil {
				return fmt.Errorf("ошибка подготовки ключей подписи: %w", err)
			}
			sig, err := reporting.SignCertificate(cert, key)
			if err != nil {
				return fmt.Errorf("ошибка подписи сертификата: %w", err)
			}
			sigPath, err := reporting.SaveSignature(path, sig)
			if err != nil {
				return fmt.Errorf("ошибка сохранения подписи: %w", err)
			}
			fmt.Printf("Подпись сохранена:   %s\n", sigPath)
		}
	}

	return nil
}

func runMethods(cmd *cobra.Command, args []string) error {
	fmt.Println("Поддерживаемые методы затирания:")
	fmt.Println("================================")
	for _, policy := range wipe.SupportedMethods() {
		fmt.Printf("%-22s %s\n", policy.Method, policy.Label)
		fmt.Printf("%-22s базовых проходов: %d, паттерны: %v\n", "", policy.BasePasses, policy.Patterns)
	}

	fmt.Println("\nУровни и итоговое число проходов (от базового b):")
	fmt.Println("  quick    - max(1, floor(b*0.5))")
	fmt.Println("  standard - b")
	fmt.Println("  secure   - b*2")
	fmt.Println("  military - max(b*7, 35)")

	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	device, err := system.DetectHostDevice()
	if err != nil {
		return fmt.Errorf("ошибка определения устройства: %w", err)
	}

	fmt.Println("Дескриптор локального хоста:")
	fmt.Println("============================")
	fmt.Printf("ID:        %s\n", device.ID)
	fmt.Printf("Имя:       %s\n", device.Name)
	fmt.Printf("Тип:       %s\n", device.Type)
	fmt.Printf("ОС:        %s\n", device.OSType)
	fmt.Printf("Ёмкость:   %s\n", device.Capacity)
	fmt.Printf("SSD:       %t\n", device.IsSSD)
	fmt.Printf("HPA/DCO:   %t\n", device.SupportsHPADCO)

	if verbose {
		partitions, err := system.ListPartitions()
		if err == nil {
			fmt.Println("\nРазделы:")
			for _, p := range partitions {
				fmt.Printf("  %-20s %-8s %s total, %s free\n", p.Mountpoint, p.Fstype,
					system.FormatCapacity(p.TotalSize), system.FormatCapacity(p.FreeSize))
			}
		}
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Корректные exit codes
		if strings.Contains(err.Error(), "ошибка сохранения сертификата") ||
			strings.Contains(err.Error(), "ошибка подписи сертификата") ||
			strings.Contains(err.Error(), "ошибка сохранения подписи") ||
			strings.Contains(err.Error(), "ошибка подготовки ключей подписи") {
			// Симуляция прошла, пострадала только отчётность
			os.Exit(EXIT_WARNING)
		}
		os.Exit(EXIT_ERROR)
	}
	os.Exit(EXIT_SUCCESS)
}
