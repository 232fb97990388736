// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	kubevirtv1 "kubevirt.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"cyberdesk-operator/logger"
	"cyberdesk-operator/pkg/apis/cyberdesk/v1alpha1"
	"cyberdesk-operator/pkg/config"
	"cyberdesk-operator/pkg/gateway"
	"cyberdesk-operator/pkg/operator"
	"cyberdesk-operator/pkg/operator/controllers"
	"cyberdesk-operator/pkg/startup"
	"cyberdesk-operator/pkg/store"
)

const version = "1.0.0"

func main() {
	kubeconfig := flag.String("kubeconfig", "", "Path to kubeconfig file (optional, uses in-cluster config by default)")
	masterURL := flag.String("master", "", "Kubernetes master URL (optional)")
	metricsAddr := flag.String("metrics-bind-address", ":8080", "Address the metrics endpoint binds to")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	configFile := flag.String("config-file", "", "Optional YAML file overriding environment-resolved configuration")
	versionFlag := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("cyberdesk-operator version %s\n", version)
		os.Exit(0)
	}

	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgDarkGray)).
		WithTextStyle(pterm.NewStyle(pterm.FgLightWhite)).
		Println("Cyberdesk Kubernetes Operator")
	pterm.Info.Printfln("Version: %s", version)

	log := logger.New(*logLevel)

	var cfg *config.Config
	var err error
	if *configFile != "" {
		pterm.Info.Printfln("Loading configuration overrides from %s", *configFile)
		cfg, err = config.LoadFromFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		pterm.Error.Printfln("Invalid configuration: %v", err)
		os.Exit(1)
	}
	pterm.Success.Printfln("Configuration loaded (namespace=%s, golden snapshot=%s)", cfg.Cluster.Namespace, cfg.Cluster.GoldenSnapshot)

	var restCfg *rest.Config
	if *kubeconfig != "" {
		pterm.Info.Printfln("Using kubeconfig: %s", *kubeconfig)
		restCfg, err = clientcmd.BuildConfigFromFlags(*masterURL, *kubeconfig)
	} else {
		pterm.Info.Println("Using in-cluster configuration")
		restCfg, err = rest.InClusterConfig()
	}
	if err != nil {
		pterm.Error.Printfln("Failed to build Kubernetes config: %v", err)
		os.Exit(1)
	}

	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		pterm.Error.Printfln("Failed to add core Kubernetes types to scheme: %v", err)
		os.Exit(1)
	}
	if err := kubevirtv1.AddToScheme(scheme); err != nil {
		pterm.Error.Printfln("Failed to add KubeVirt types to scheme: %v", err)
		os.Exit(1)
	}
	if err := v1alpha1.AddToScheme(scheme); err != nil {
		pterm.Error.Printfln("Failed to add Cyberdesk types to scheme: %v", err)
		os.Exit(1)
	}

	mgr, err := ctrl.NewManager(restCfg, ctrl.Options{
		Scheme:  scheme,
		Metrics: metricsserver.Options{BindAddress: *metricsAddr},
	})
	if err != nil {
		pterm.Error.Printfln("Failed to create manager: %v", err)
		os.Exit(1)
	}

	ctx := ctrl.SetupSignalHandler()

	pterm.Info.Println("Connecting to the status store...")
	statusStore, err := store.New(ctx, cfg.Store.URL)
	if err != nil {
		pterm.Error.Printfln("Failed to connect to status store: %v", err)
		os.Exit(1)
	}

	gatewayClient := gateway.New(cfg.Gateway.BaseURL, log)

	opCtx := &operator.Context{
		Client:  mgr.GetClient(),
		Store:   statusStore,
		Gateway: gatewayClient,
		Config:  cfg,
		Log:     log,
	}
	defer opCtx.Close()

	pterm.Info.Println("Verifying golden snapshot availability...")
	const (
		snapshotCheckMaxAttempts = 10
		snapshotCheckRetryDelay  = 30 * time.Second
	)
	for attempt := 1; ; attempt++ {
		err := startup.CheckGoldenSnapshot(ctx, mgr.GetAPIReader(), cfg.Cluster.Namespace, cfg.Cluster.GoldenSnapshot)
		if err == nil {
			break
		}
		if errors.Is(err, startup.ErrGoldenSnapshotNotFound) {
			pterm.Error.Printfln("Startup precondition failed: %v", err)
			os.Exit(1)
		}
		if attempt >= snapshotCheckMaxAttempts {
			pterm.Error.Printfln("Golden snapshot check failed after %d attempts: %v", attempt, err)
			os.Exit(1)
		}
		pterm.Warning.Printfln("Transient error checking golden snapshot (attempt %d/%d), retrying in %s: %v",
			attempt, snapshotCheckMaxAttempts, snapshotCheckRetryDelay, err)
		select {
		case <-ctx.Done():
			pterm.Error.Println("Shutdown requested while waiting for the golden snapshot")
			os.Exit(1)
		case <-time.After(snapshotCheckRetryDelay):
		}
	}
	pterm.Success.Println("Golden snapshot found")

	if err := (&controllers.CyberdeskReconciler{Context: opCtx, Scheme: scheme}).SetupWithManager(mgr); err != nil {
		pterm.Error.Printfln("Failed to set up Cyberdesk controller: %v", err)
		os.Exit(1)
	}
	if err := (&controllers.VMIPhaseReconciler{Context: opCtx, Scheme: scheme}).SetupWithManager(mgr); err != nil {
		pterm.Error.Printfln("Failed to set up VMI phase controller: %v", err)
		os.Exit(1)
	}
	if err := (&controllers.VMIReadyReconciler{Context: opCtx, Scheme: scheme}).SetupWithManager(mgr); err != nil {
		pterm.Error.Printfln("Failed to set up VMI readiness controller: %v", err)
		os.Exit(1)
	}

	pterm.Success.Println("Controllers registered")
	pterm.Info.Println("Starting manager...")

	if err := mgr.Start(ctx); err != nil {
		pterm.Error.Printfln("Manager exited with error: %v", err)
		os.Exit(1)
	}

	pterm.Success.Println("Operator stopped")
}
